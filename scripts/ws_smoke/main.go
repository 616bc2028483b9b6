package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/relaychat-server/internal/proto"
)

// frame is an outbound envelope with the payload kept raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "tester", "unique key of an existing user")
	chat := flag.String("chat", "general", "chat id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{Protocol: proto.ProtocolVersion}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{ChatID: *chat, UserID: *user}); err != nil {
		return err
	}

	for {
		var in frame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if in.Type == proto.OutboundTypeError && in.Error != nil {
			return fmt.Errorf("server error %s: %s", in.Error.Code, in.Error.Msg)
		}
		fmt.Printf("Received: type=%s event=%s\n", in.Type, in.Event)

		switch in.Event {
		case proto.EventJoined:
			var evt proto.JoinedData
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal joined: %w", err)
			}
			fmt.Printf("Joined: chat=%s user=%s name=%s\n", evt.ChatID, evt.UserID, evt.Name)
			if err := send(proto.InboundTypeSendMessage, proto.SendMessageData{ChatID: *chat, Content: *text, SenderID: *user}); err != nil {
				return err
			}
		case proto.EventMessage:
			var evt proto.MessageDoc
			if err := json.Unmarshal(in.Data, &evt); err != nil {
				fmt.Printf("Raw data: %s\n", string(in.Data))
				return fmt.Errorf("unmarshal message: %w", err)
			}
			fmt.Printf("Message: chat=%s sender=%s content=%q status=%s id=%d\n",
				evt.ChatID, evt.SenderName, evt.Message.Content, evt.Status, evt.ID)
			return nil
		default:
			// keep looping for message
		}
	}
}
