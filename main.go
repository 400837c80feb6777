package main

import (
	"log"

	"github.com/talentops/resume-quality/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
