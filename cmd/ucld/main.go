package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/env"
	"github.com/robotalks/ucl.go/pkg/sched"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.Default().MustNewEnv()
	defer e.Close()

	loop := sched.NewLoop()
	e.AddToLoop(loop)
	runner := sched.NewRunner().HandleSignals().Go(loop)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
