package main

import (
	"log"
	"os"

	"github.com/viant/authsession/cli"
	_ "github.com/viant/scy/kms/blowfish"
)

func main() {
	if err := cli.RunSession(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
