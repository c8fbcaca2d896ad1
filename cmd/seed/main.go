package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("logger", "seed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
