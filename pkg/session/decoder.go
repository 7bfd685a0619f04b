// Package session 入站消息解码
package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// MessageKind 入站消息的分类
type MessageKind int

const (
	KindUnknown     MessageKind = iota // 无法识别或无法解析
	KindInfo                           // {"message": string}
	KindError                          // {"error": string}
	KindMeasurement                    // {"distance": number, "image"?: base64}
	KindCalibration                    // {"calibrationStatus": string, "progress"?: number}
)

// String 返回分类名称，同时用作指标标签
func (k MessageKind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindError:
		return "error"
	case KindMeasurement:
		return "measurement"
	case KindCalibration:
		return "calibration"
	default:
		return "unknown"
	}
}

// Message 解码后的入站消息
type Message struct {
	Kind MessageKind
	Text string // 提示、错误或校准状态文本

	Distance float64 // 距离(米)，可能为负数（服务端未检测到目标）
	Image    []byte  // 解码后的图像数据，未携带或解码失败时为nil
	ImageErr error   // 携带了图像但base64解码失败

	Progress    float64
	HasProgress bool
}

// Decode 按优先级对原始载荷进行分类：提示 > 错误 > 测量 > 校准 > 未知
// 某个字段的JSON类型不匹配时，该形状视为不匹配，继续尝试下一个
func Decode(payload []byte) Message {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return Message{Kind: KindUnknown}
	}

	if text, ok := stringField(fields, "message"); ok && text != "" {
		return Message{Kind: KindInfo, Text: text}
	}

	if text, ok := stringField(fields, "error"); ok && text != "" {
		return Message{Kind: KindError, Text: text}
	}

	if distance, ok := numberField(fields, "distance"); ok {
		msg := Message{Kind: KindMeasurement, Distance: distance}
		if encoded, ok := stringField(fields, "image"); ok && encoded != "" {
			msg.Image, msg.ImageErr = decodeImage(encoded)
		}
		return msg
	}

	if status, ok := stringField(fields, "calibrationStatus"); ok && status != "" {
		msg := Message{Kind: KindCalibration, Text: status}
		msg.Progress, msg.HasProgress = numberField(fields, "progress")
		return msg
	}

	return Message{Kind: KindUnknown}
}

// stringField 读取字符串字段，缺失、为null或类型不符时返回false
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

// numberField 读取数值字段，缺失、为null或类型不符时返回false
func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	return *f, true
}

// decodeImage 解码base64图像，兼容带 data:image/...;base64, 前缀的写法
func decodeImage(encoded string) ([]byte, error) {
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.IndexByte(encoded, ','); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	return data, nil
}
