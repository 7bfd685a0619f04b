package session

import (
	"encoding/base64"
	"testing"
)

// TestDecodePriority 测试各种消息形状的分类和优先级
func TestDecodePriority(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		kind    MessageKind
		text    string
	}{
		{"info", `{"message": "Camera initialized"}`, KindInfo, "Camera initialized"},
		{"error", `{"error": "camera lost"}`, KindError, "camera lost"},
		{"info wins over error", `{"message": "hi", "error": "boom"}`, KindInfo, "hi"},
		{"error wins over distance", `{"error": "boom", "distance": 1}`, KindError, "boom"},
		{"empty info falls through", `{"message": "", "distance": 1.5}`, KindMeasurement, ""},
		{"measurement", `{"distance": 1.5}`, KindMeasurement, ""},
		{"calibration", `{"calibrationStatus": "Calibration started", "progress": 0}`, KindCalibration, "Calibration started"},
		{"distance wins over calibration", `{"calibrationStatus": "x", "distance": 0.3}`, KindMeasurement, ""},
		{"null distance", `{"distance": null}`, KindUnknown, ""},
		{"string distance", `{"distance": "1.5"}`, KindUnknown, ""},
		{"non-string message", `{"message": 42}`, KindUnknown, ""},
		{"unknown field", `{"foo": "bar"}`, KindUnknown, ""},
		{"array", `[1,2,3]`, KindUnknown, ""},
		{"null", `null`, KindUnknown, ""},
		{"not json", `distance=1.0`, KindUnknown, ""},
		{"empty", ``, KindUnknown, ""},
	}

	for _, c := range cases {
		msg := Decode([]byte(c.payload))
		if msg.Kind != c.kind {
			t.Errorf("%s: expected kind %v, got %v", c.name, c.kind, msg.Kind)
		}
		if msg.Text != c.text {
			t.Errorf("%s: expected text %q, got %q", c.name, c.text, msg.Text)
		}
	}
}

// TestDecodeMeasurement 测试测量消息的字段解析
func TestDecodeMeasurement(t *testing.T) {
	msg := Decode([]byte(`{"distance": -1}`))
	if msg.Kind != KindMeasurement || msg.Distance != -1 {
		t.Errorf("Expected measurement with distance -1, got %+v", msg)
	}
	if msg.Image != nil {
		t.Error("Expected no image")
	}

	frame := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := base64.StdEncoding.EncodeToString(frame)

	msg = Decode([]byte(`{"distance": 0.42, "image": "` + encoded + `"}`))
	if msg.Distance != 0.42 {
		t.Errorf("Expected distance 0.42, got %f", msg.Distance)
	}
	if string(msg.Image) != string(frame) {
		t.Errorf("Expected decoded image bytes, got %v", msg.Image)
	}

	msg = Decode([]byte(`{"distance": 0.42, "image": "data:image/jpeg;base64,` + encoded + `"}`))
	if string(msg.Image) != string(frame) {
		t.Errorf("Expected data URL prefix to be stripped, got %v", msg.Image)
	}

	msg = Decode([]byte(`{"distance": 0.42, "image": "%%%"}`))
	if msg.Kind != KindMeasurement || msg.Image != nil || msg.ImageErr == nil {
		t.Errorf("Expected measurement with image error, got %+v", msg)
	}

	msg = Decode([]byte(`{"distance": 0.42, "image": 12}`))
	if msg.Kind != KindMeasurement || msg.Image != nil || msg.ImageErr != nil {
		t.Errorf("Non-string image should be ignored, got %+v", msg)
	}
}

// TestDecodeCalibrationProgress 测试校准进度
func TestDecodeCalibrationProgress(t *testing.T) {
	msg := Decode([]byte(`{"calibrationStatus": "Calibrating... 40%", "progress": 40}`))
	if !msg.HasProgress || msg.Progress != 40 {
		t.Errorf("Expected progress 40, got %+v", msg)
	}

	msg = Decode([]byte(`{"calibrationStatus": "Calibration complete"}`))
	if msg.Kind != KindCalibration || msg.HasProgress {
		t.Errorf("Expected calibration without progress, got %+v", msg)
	}
}

// TestMessageKindString 测试分类名称
func TestMessageKindString(t *testing.T) {
	names := map[MessageKind]string{
		KindUnknown:     "unknown",
		KindInfo:        "info",
		KindError:       "error",
		KindMeasurement: "measurement",
		KindCalibration: "calibration",
	}
	for kind, want := range names {
		if kind.String() != want {
			t.Errorf("Expected %q, got %q", want, kind.String())
		}
	}
}

// BenchmarkDecode 基准测试带图像的测量消息解码性能
func BenchmarkDecode(b *testing.B) {
	frame := make([]byte, 32<<10)
	payload := []byte(`{"distance": 0.75, "image": "` + base64.StdEncoding.EncodeToString(frame) + `"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(payload)
	}
}
