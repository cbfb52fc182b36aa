// Command posewatch tails the pose stream of a running portal server and
// prints each pose to stdout. Useful for checking tracking quality
// without a browser.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "portal server address")
	raw := flag.Bool("raw", false, "print raw JSON instead of formatted poses")
	flag.Parse()
	log.Init("info")

	url := fmt.Sprintf("ws://%s/ws/pose", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Error("dial", "url", url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("connected", "url", url)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-interrupt
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		os.Exit(0)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Error("read", "error", err)
			os.Exit(1)
		}
		if *raw {
			fmt.Println(string(data))
			continue
		}
		var p headtrack.Pose
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn("decode", "error", err)
			continue
		}
		fmt.Printf("x=%+.3f y=%+.3f z=%6.2f\n", p.X, p.Y, p.Z)
	}
}
