package main

import (
	"github.com/michaelquigley/pfxlog"
	"github.com/sirupsen/logrus"
)

func init() {
	pfxlog.Global(logrus.InfoLevel)
	pfxlog.SetPrefix("github.com/grailapp/")
}

func main() {
	defer logrus.Debugf("finished")

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("error (%v)", err)
	}
}
