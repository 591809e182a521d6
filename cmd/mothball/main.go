package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"mothball/pkg/btree"
	"mothball/pkg/config"
	"mothball/pkg/pager"
	"mothball/pkg/repl"

	"mothball/pkg/concurrency"
	"mothball/pkg/recovery"

	"github.com/google/uuid"
)

// Default port 8335 (BEES).
const DEFAULT_PORT int = 8335

const LOG_FILE_NAME = "data/mothball.log"

// [EVICT]
// Listens for SIGINT or SIGTERM and closes index.
func setupCloseHandler(index *btree.BTreeIndex) {
	c := make(chan os.Signal)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("closehandler invoked")
		index.Close()
		os.Exit(0)
	}()
}

// [CONCURRENCY]
// Start listening for connections at port `port`.
func startServer(repl *repl.REPL, tm *concurrency.TransactionManager, prompt string, port int) {
	// Handle a connection by running the repl on it.
	handleConn := func(c net.Conn) {
		clientId := uuid.New()
		defer c.Close()
		if tm != nil {
			defer tm.Commit(clientId)
		}
		repl.Run(clientId, prompt, c, c)
	}
	// Start listening for new connections.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		log.Fatal(err)
	}
	dbName := config.DBName
	fmt.Printf("%v server started listening on localhost:%v\n", dbName,
		listener.Addr().(*net.TCPAddr).Port)
	// Handle each connection.
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Print(err)
			continue
		}
		go handleConn(conn)
	}
}

// Start the database.
func main() {
	// Set up flags.
	var promptFlag = flag.Bool("c", true, "use prompt?")
	var projectFlag = flag.String("project", "", "choose project: [pager,evict] (required)")

	// [EVICT]
	var dbFlag = flag.String("db", "data/", "DB folder")

	// [CONCURRENCY]
	var portFlag = flag.Int("p", DEFAULT_PORT, "port number")

	flag.Parse()

	// Set up REPL resources.
	prompt := config.GetPrompt(*promptFlag)
	repls := make([]*repl.REPL, 0)

	// [CONCURRENCY]
	var tm *concurrency.TransactionManager
	server := false

	// Get the right REPLs.
	switch *projectFlag {

	// [PAGER]
	case "pager":
		pRepl, err := pager.PagerRepl()
		if err != nil {
			fmt.Println(err)
			return
		}
		repls = append(repls, pRepl)

	// [EVICT/CONCURRENCY/RECOVERY]
	case "evict":
		server = true
		if err := os.MkdirAll(*dbFlag, 0775); err != nil {
			fmt.Println(err)
			return
		}
		indexPath := filepath.Join(*dbFlag, "evict.db")
		if _, err := recovery.Prime(*dbFlag); err != nil {
			fmt.Println(err)
			return
		}
		index, err := btree.OpenIndex(indexPath)
		if err != nil {
			fmt.Println(err)
			return
		}
		setupCloseHandler(index)

		lm := concurrency.NewResourceLockManager()
		tm = concurrency.NewTransactionManager(lm)

		rm, err := recovery.NewManager(LOG_FILE_NAME)
		if err != nil {
			fmt.Println(err)
			return
		}

		repls = append(repls, btree.EvictionREPL(index, tm, rm))

	default:
		fmt.Println("must specify -project [pager,evict]")
		return
	}

	// Combine the REPLs.
	r, err := repl.CombineRepls(repls)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Start server if server (evict), else run REPL here.
	if server {
		startServer(r, tm, prompt, *portFlag)
	} else {
		r.Run(uuid.New(), prompt, nil, nil)
	}
}
