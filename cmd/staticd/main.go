// Command staticd serves static files and directory listings over
// HTTP/1.1 from a single, non-blocking event loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-staticd/staticd"
)

const (
	defaultPort        = 8080
	defaultConnTimeout = 60
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("staticd", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var port int
	fs.IntVar(&port, "p", defaultPort, "TCP port to listen on")
	fs.IntVar(&port, "port", defaultPort, "TCP port to listen on")

	var connTimeout int
	fs.IntVar(&connTimeout, "t", defaultConnTimeout, "inactivity timeout in seconds (0 disables eviction)")
	fs.IntVar(&connTimeout, "conn_timeout", defaultConnTimeout, "inactivity timeout in seconds (0 disables eviction)")

	var noBrowse bool
	fs.BoolVar(&noBrowse, "b", false, "disable directory browsing, falling back to index.html")
	fs.BoolVar(&noBrowse, "no-browse", false, "disable directory browsing, falling back to index.html")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	webRootPath := "./"
	if fs.NArg() >= 1 {
		webRootPath = fs.Arg(0)
	}

	router, err := staticd.NewFSRouter(webRootPath, !noBrowse)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}

	server := &staticd.Server{
		Config: staticd.Config{
			Port:        port,
			ConnTimeout: time.Duration(connTimeout) * time.Second,
		},
		Router: router,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\n[INFO] %s received\n", sig)
		server.Stop()
	}()

	fmt.Fprintf(os.Stderr, "[INFO] serving %q on port %d\n", webRootPath, port)
	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}

	return 0
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: staticd [-p|--port P] [-t|--conn_timeout T] [-b|--no-browse] [-h|--help] <web_root_path>")
	fs.PrintDefaults()
}
