package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mothball/pkg/btree"
	"mothball/pkg/concurrency"
	"mothball/pkg/recovery"

	"github.com/google/uuid"
)

var STARTUP = 100 * time.Millisecond
var MAX_DELAY int64 = 10

// Listens for SIGINT or SIGTERM and closes the index.
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

// Get delay jitter.
func jitter() time.Duration {
	return time.Duration(rand.Int63n(MAX_DELAY)+1) * time.Millisecond
}

// Parse workload: one evict_new/evict_run command per line.
func parseWorkload(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var workload []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		workload = append(workload, scanner.Text())
	}
	return workload, scanner.Err()
}

// Handle workload.
func handleWorkload(c chan string, wg *sync.WaitGroup, workload []string, idx int, n int) {
	defer wg.Done()
	for i := idx; i < len(workload); i += n {
		time.Sleep(jitter())
		c <- workload[i]
	}
}

// Drive the page-eviction core through its REPL under concurrent load.
func main() {
	var workloadFlag = flag.String("workload", "", "workload file of evict_new/evict_run commands (required)")
	var nFlag = flag.Int("n", 1, "number of threads to run (default: 1)")
	var verifyFlag = flag.Bool("verify", false, "enable to print eviction counters at the end of the workload")
	flag.Parse()

	os.Remove("./data/evict_stress.db")
	index, err := btree.OpenIndex("./data/evict_stress.db")
	if err != nil {
		panic(err)
	}
	defer index.Close()
	setupCloseHandler(index)

	os.Remove("./data/evict_stress.log")
	lm := concurrency.NewResourceLockManager()
	tm := concurrency.NewTransactionManager(lm)
	rm, err := recovery.NewManager("./data/evict_stress.log")
	if err != nil {
		panic(err)
	}
	defer rm.Close()

	r := btree.EvictionREPL(index, tm, rm)
	c := make(chan string)
	go r.RunChan(c, uuid.New(), "")

	// Some time to wake up...
	time.Sleep(STARTUP)

	if *workloadFlag == "" {
		fmt.Println("no workload file given")
		return
	}
	workload, err := parseWorkload(*workloadFlag)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Some time to wake up...
	time.Sleep(STARTUP)
	var wg sync.WaitGroup
	for i := 0; i < *nFlag; i++ {
		wg.Add(1)
		go handleWorkload(c, &wg, workload, i, *nFlag)
	}
	wg.Wait()

	if *verifyFlag {
		time.Sleep(STARTUP)
		c <- "evict_stats"
		time.Sleep(STARTUP)
	}
}
