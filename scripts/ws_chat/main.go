package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/relaychat-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "unique key of an existing user")
	chat := flag.String("chat", "general", "chat to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinRoomData{ChatID: *chat, UserID: *user})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s, joining chat %s\n", *addr, *user, *chat)
	fmt.Println("Type messages and press Enter to send. /join <chat> switches rooms. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *chat, *user)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var in frame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if in.Type == proto.OutboundTypeError && in.Error != nil {
			fmt.Printf("! %s: %s\n", in.Error.Code, in.Error.Msg)
			continue
		}

		switch in.Event {
		case proto.EventMessage:
			var evt proto.MessageDoc
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			printMessage(evt)
		case proto.EventHistory:
			var evt proto.HistoryData
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				log.Printf("unmarshal history: %v", err)
				continue
			}
			for _, m := range evt.Messages {
				printMessage(m)
			}
		case proto.EventJoined:
			var evt proto.JoinedData
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				log.Printf("unmarshal joined: %v", err)
				continue
			}
			fmt.Printf("[chat %s] joined as %s\n", evt.ChatID, evt.Name)
		case proto.EventLeft:
			var evt proto.LeftData
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				log.Printf("unmarshal left: %v", err)
				continue
			}
			fmt.Printf("[chat %s] left\n", evt.ChatID)
		default:
			fmt.Printf("event=%s data=%s\n", in.Event, string(in.Data))
		}
	}
}

func printMessage(m proto.MessageDoc) {
	fmt.Printf("[%s] %s: %s\n", m.ChatID, m.SenderName, m.Message.Content)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, chat, user string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			inbound := proto.Inbound{Type: proto.InboundTypeSendMessage}
			var data any = proto.SendMessageData{ChatID: chat, Content: text, SenderID: user}
			if next, ok := strings.CutPrefix(text, "/join "); ok {
				chat = strings.TrimSpace(next)
				inbound.Type = proto.InboundTypeJoinRoom
				data = proto.JoinRoomData{ChatID: chat, UserID: user}
			}

			payload, err := json.Marshal(data)
			if err != nil {
				log.Printf("marshal %s: %v", inbound.Type, err)
				return
			}
			inbound.Data = payload
			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
