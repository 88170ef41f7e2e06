package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 读 .env；生产环境直接吃真实环境变量，没有文件不算错
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("load .env: %v", err)
		}
	}
}
