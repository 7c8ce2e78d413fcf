package main

import (
	"context"
	"log"

	"github.com/nastosinka/oops-trap-sub000/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
