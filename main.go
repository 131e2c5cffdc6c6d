/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-ui/engine"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/testbed"
)

func main() {
	configPath := flag.String("config", "anima.toml", "path of the application config file")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		core.LogFatal("%s", err)
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		// capture sigterm and other system call here
		<-sigCh
		e.Stop()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
