package main

import (
	"flag"
	"log"
	"time"

	"github.com/cantondex/cantondex-go/cantonmock/server"
)

func main() {
	addr := flag.String("addr", ":8000", "HTTP server address")
	tickerInterval := flag.Duration("ticker-interval", 2*time.Second, "interval between broadcast ticker frames (0 disables)")
	flag.Parse()

	srv := server.New()

	if *tickerInterval > 0 {
		go func() {
			for range time.Tick(*tickerInterval) {
				srv.Hub.BroadcastEvent("ticker_update", map[string]string{
					"pair":       "BTC/USDC",
					"last_price": "50012.50",
				})
			}
		}()
	}

	log.Printf("Mock CantonDEX backend listening on %s", *addr)
	log.Printf("Endpoints: REST under %s, websocket at %s/ws", *addr, *addr)
	if err := srv.Run(*addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
