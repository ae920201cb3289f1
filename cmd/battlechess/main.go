package main

import (
	"flag"
	"fmt"
	"os"

	petname "github.com/dustinkirkland/golang-petname"

	"github.com/qnkhuat/battlechess/pkg"
	"github.com/qnkhuat/battlechess/pkg/config"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "history" {
		if err := history(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := play(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func play() error {
	server := flag.String("server", ":1998", "address of the battlechess server")
	name := flag.String("name", "", "display name, random if empty")
	match := flag.String("match", "", "match to join, a new one if empty")
	viewer := flag.Bool("viewer", false, "watch without taking a seat")
	logPath := flag.String("log", "./battlechess.log", "path to log file")
	logLevel := flag.String("log-level", "info", "log level")
	configDir := flag.String("config", ".", "directory holding "+config.FileName)
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		return err
	}
	theme, err := config.GetTheme()
	if err != nil {
		return err
	}

	log, closer, err := pkg.InitLog(*logPath, "client", *logLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	if *name == "" {
		*name = petname.Generate(2, "-")
	}

	cl := pkg.NewClient(*name, theme, log)
	if err := cl.Connect(*server, *match, *viewer); err != nil {
		return err
	}
	defer cl.Disconnect()

	go cl.HandleRead()
	go cl.HandleWrite()
	return cl.Run()
}
