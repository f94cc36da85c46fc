package main

import (
	"github.com/joho/godotenv"
	"gitlab.com/open-soft/go-chart-server/src/config"
	"log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file is not loaded")
	}

	container := config.InitServiceContainer()

	defer container.Db.Close()
	defer container.RDB.Close()

	container.StartHttpServer()
}
