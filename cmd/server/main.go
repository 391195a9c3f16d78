package main

import (
	"log"

	"github.com/iammohit64/wrap-up/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
