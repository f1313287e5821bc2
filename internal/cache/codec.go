package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Entry 是磁盘上的一条缓存记录。Payload 对缓存不透明。
type Entry struct {
	Payload   json.RawMessage
	WrittenAt time.Time
	// MaxAge 为写入时记录的自身有效期，缺省表示不因自身策略过期。
	MaxAge MaxAge
	// SourceURL 仅用于诊断。
	SourceURL string
}

// Kind 区分解码出的两种文件形态。
type Kind int

const (
	// KindEnvelope 为当前格式：包含 data 字段的对象。
	KindEnvelope Kind = iota + 1
	// KindLegacy 为旧版直接写入的裸 payload，没有任何元数据。
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Decoded 是 Decode 的结果：Kind 为 KindEnvelope 时 Entry 非空，否则 Legacy 携带原始值。
type Decoded struct {
	Kind   Kind
	Entry  *Entry
	Legacy json.RawMessage
}

// Payload 返回两种形态共同的负载。
func (d Decoded) Payload() json.RawMessage {
	if d.Kind == KindEnvelope && d.Entry != nil {
		return d.Entry.Payload
	}
	return d.Legacy
}

// envelope 的字段顺序即序列化顺序，保持字典序以便磁盘 diff 稳定。
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Duration  *float64        `json:"duration"`
	SourceURL *string         `json:"source_url"`
	Timestamp float64         `json:"timestamp"`
}

// Encode 将 Entry 序列化为 4 空格缩进的 envelope JSON。
func Encode(e Entry) ([]byte, error) {
	payload := e.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("null")
	}
	if !json.Valid(payload) {
		return nil, errors.New("encode cache entry: payload is not valid JSON")
	}

	env := envelope{
		Data:      payload,
		Timestamp: float64(e.WrittenAt.UnixMicro()) / 1e6,
	}
	if d, ok := e.MaxAge.Duration(); ok {
		secs := d.Seconds()
		env.Duration = &secs
	}
	if e.SourceURL != "" {
		url := e.SourceURL
		env.SourceURL = &url
	}

	out, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return out, nil
}

// Decode 解析文件内容。包含 data 字段的对象视为 envelope，其余可解析的值视为旧格式。
// 无法解析的文本或元数据类型错误的 envelope 返回 *DecodeError。
func Decode(raw []byte) (Decoded, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return Decoded{}, &DecodeError{Err: errors.New("malformed JSON")}
	}

	if trimmed[0] != '{' {
		return legacy(trimmed), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Decoded{}, &DecodeError{Err: err}
	}
	data, ok := fields["data"]
	if !ok {
		return legacy(trimmed), nil
	}

	entry := &Entry{Payload: data}

	duration, err := optionalNumber(fields["duration"])
	if err != nil {
		return Decoded{}, &DecodeError{Err: fmt.Errorf("duration: %w", err)}
	}
	if duration != nil {
		entry.MaxAge = Within(time.Duration(math.Round(*duration * float64(time.Second))))
	}

	ts, err := optionalNumber(fields["timestamp"])
	if err != nil {
		return Decoded{}, &DecodeError{Err: fmt.Errorf("timestamp: %w", err)}
	}
	switch {
	case ts != nil:
		entry.WrittenAt = time.UnixMicro(int64(math.Round(*ts * 1e6)))
	case duration != nil:
		return Decoded{}, &DecodeError{Err: errors.New("timestamp missing for entry with duration")}
	}

	if rawURL, ok := fields["source_url"]; ok && !isNull(rawURL) {
		var url string
		if err := json.Unmarshal(rawURL, &url); err != nil {
			return Decoded{}, &DecodeError{Err: fmt.Errorf("source_url: %w", err)}
		}
		entry.SourceURL = url
	}

	return Decoded{Kind: KindEnvelope, Entry: entry}, nil
}

func legacy(raw []byte) Decoded {
	return Decoded{Kind: KindLegacy, Legacy: json.RawMessage(append([]byte(nil), raw...))}
}

func optionalNumber(raw json.RawMessage) (*float64, error) {
	if raw == nil || isNull(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
