package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/cors"

	controllers "webdl/controller"
	"webdl/progress"
	"webdl/router"
	"webdl/services"
	"webdl/settings"
	utils "webdl/utils"
	ytdlp "webdl/yt-dlp"
)

func main() {
	host := flag.String("host", "127.0.0.1", "interface to listen on")
	port := flag.Int("port", 5000, "port to listen on")
	configPath := flag.String("config", settings.DefaultPath(), "settings file")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser window")
	binary := flag.String("yt-dlp", ytdlp.DefaultBinary, "yt-dlp executable")
	maxDownloads := flag.Int("max-downloads", 2, "concurrent yt-dlp processes")
	retention := flag.Duration("retention", 0, "delete downloads older than this (0 keeps everything)")
	flag.Parse()

	store := settings.Open(*configPath)
	log.Printf("⚙️ Settings: %s | downloads: %s", store.Path(), store.DownloadDir())

	client := ytdlp.NewClient(*binary, utils.NewSlots(*maxDownloads))
	if deps := client.Dependencies(); !deps.YTDLPFound {
		log.Printf("⚠️ %s not found on PATH, downloads will fail", *binary)
	}

	hub := progress.NewHub()
	bulk := services.NewBulk(client, store, hub)
	handler := controllers.NewHandler(store, client, bulk, hub)

	if *retention > 0 {
		go cleanupLoop(store, *retention)
	}

	r := router.SetupRouter(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	url := fmt.Sprintf("http://%s", addr)

	if !*noBrowser {
		go func() {
			time.Sleep(1 * time.Second)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("⚠️ Could not open browser: %v", err)
			}
		}()
	}

	log.Printf("🚀 Server running at %s", url)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func cleanupLoop(store *settings.Store, retention time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		if err := utils.DeleteFilesOlderThan(store.DownloadDir(), retention); err != nil {
			log.Printf("❌ Cleanup error: %v", err)
		}
		<-ticker.C
	}
}

