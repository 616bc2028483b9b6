package http

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/proto"
	"github.com/vovakirdan/relaychat-server/internal/store"
)

// inboundToCommand maps a client frame to a core command. A nil command with a
// nil error means the frame was handled at the protocol level.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if err := decodeData(inbound.Data, &hello); err != nil {
			return nil, invalidMessage(err)
		}
		if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
			return nil, &proto.Error{
				Code: proto.ErrCodeUnsupportedVersion,
				Msg:  fmt.Sprintf("protocol %d is not supported, use %d", hello.Protocol, proto.ProtocolVersion),
			}
		}
		return nil, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, invalidMessage(err)
		}
		if join.ChatID == "" || join.UserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "chat_id and user_id are required"}
		}
		return &core.Command{
			Kind:    core.CommandJoinRoom,
			Room:    join.ChatID,
			UserKey: join.UserID,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, invalidMessage(err)
		}
		if msg.ChatID == "" || msg.SenderID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "chat_id and sender_id are required"}
		}
		return &core.Command{
			Kind:        core.CommandSendRoomMessage,
			Room:        msg.ChatID,
			UserKey:     msg.SenderID,
			Content:     msg.Content,
			ContentType: msg.ContentType,
		}, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.LeaveRoomData
		if err := decodeData(inbound.Data, &leave); err != nil {
			return nil, invalidMessage(err)
		}
		if leave.ChatID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "chat_id is required"}
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.ChatID,
		}, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func invalidMessage(err error) *proto.Error {
	return &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "invalid payload: " + err.Error()}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data:  messageDoc(event.Message),
		}
	case core.EventJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoined,
			Data: proto.JoinedData{
				ChatID: event.Room,
				UserID: event.UserID,
				Name:   event.UserName,
			},
		}
	case core.EventLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLeft,
			Data:  proto.LeftData{ChatID: event.Room},
		}
	case core.EventHistory:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventHistory,
			Data: proto.HistoryData{
				ChatID:   event.Room,
				Messages: messageDocs(event.Messages),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.ErrorFrame(core.ErrCodeInternal, "internal error")
		}
		return proto.ErrorFrame(event.Error.Code, event.Error.Message)
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func messageDoc(m *store.Message) proto.MessageDoc {
	if m == nil {
		return proto.MessageDoc{}
	}
	return proto.MessageDoc{
		ObjectID: m.ID,
		ChatID:   m.ChatID,
		Message: proto.MessageBody{
			Content:     m.Content,
			ContentType: m.ContentType,
		},
		Sender:     m.Sender,
		SenderName: m.SenderName,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		ID:         m.Seq,
		RecordID:   m.RecordID,
	}
}

func messageDocs(messages []*store.Message) []proto.MessageDoc {
	docs := make([]proto.MessageDoc, 0, len(messages))
	for _, m := range messages {
		docs = append(docs, messageDoc(m))
	}
	return docs
}
