// Package main is the entry point for the VietSaga chat service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/vietsaga/vietsaga/cmd/vietsaga/app"
)

func main() {
	app.NewApp().Run()
}
