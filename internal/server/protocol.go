package server

import (
	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/pkg/errors"
)

// Inbound message types.
const (
	MsgTranslate = "translate"
	MsgCancel    = "cancel"
)

// Outbound message types.
const (
	MsgPreview = "preview"
	MsgResult  = "result"
	MsgError   = "error"
)

// ClientMessage is what the browser sends over the socket.
type ClientMessage struct {
	Type         string `json:"type"`
	OriginalText string `json:"originalText,omitempty"`
	Scenario     string `json:"scenario,omitempty"`
}

// ServerMessage is the single outbound envelope. Exactly one of the payload
// fields is set, matching Type.
type ServerMessage struct {
	Type    string                    `json:"type"`
	Text    string                    `json:"text,omitempty"`
	Result  *domain.TranslationResult `json:"result,omitempty"`
	Code    string                    `json:"code,omitempty"`
	Message string                    `json:"message,omitempty"`
}

func previewMessage(text string) ServerMessage {
	return ServerMessage{Type: MsgPreview, Text: text}
}

func resultMessage(result *domain.TranslationResult) ServerMessage {
	return ServerMessage{Type: MsgResult, Result: result}
}

// errorMessage maps the error taxonomy onto the user-facing copy. Only the
// configuration error names its cause; everything else stays generic.
func errorMessage(err error) ServerMessage {
	code := errors.Code(err)

	var message string
	switch code {
	case errors.CodeConfig:
		message = "尚未設定 AI 服務金鑰，請聯絡管理員設定 GEMINI_API_KEY"
	case errors.CodeAuth:
		message = "AI 服務金鑰無效或已過期，請檢查設定"
	case errors.CodeParse:
		message = "無法理解 AI 的回應，請再試一次"
	case errors.CodeCapability:
		message = "此功能在目前環境不可用"
	case errors.CodeValidation:
		message = err.Error()
	default:
		message = "AI 服務暫時無法使用，請稍後再試"
	}

	return ServerMessage{Type: MsgError, Code: code, Message: message}
}
