package convert

import (
	"testing"
)

func TestNormalizeAlarmTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"XX省气象台发布的暴雨预警", "暴雨预警"},
		{"北京市气象台发布大风蓝色预警", "大风蓝色预警"},
		{"暴雨预警", "暴雨预警"},
	}
	for _, tc := range cases {
		if got := NormalizeAlarmTitle(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestAlarmsDecode(t *testing.T) {
	ctx := &Context{
		PictureURL: func(code string) string { return "https://pic/" + code + ".gif" },
	}
	payload := Payload{}
	alarms := []any{
		map[string]any{"w1": "广东省", "w2": "广州", "w4": "01", "w6": "03", "w9": "desc-1", "w13": "广东省气象台发布的暴雨预警"},
		map[string]any{"w1": "广东省", "w2": "深圳", "w4": "01", "w6": "03", "w9": "desc-2", "w13": "深圳市气象台发布的暴雨预警"},
		map[string]any{"w1": "广东省", "w2": "珠海", "w4": "05", "w6": "02", "w9": "desc-3", "w13": "珠海市气象台发布的大风预警"},
	}
	if err := (Alarms{}).Decode(ctx, payload, alarms); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["warning"] != true {
		t.Fatal("expected has-warning flag set")
	}
	// identical normalized titles collapse to one
	if payload["warning_title"] != "暴雨预警、大风预警" {
		t.Fatalf("expected de-duplicated joined title, got %q", payload["warning_title"])
	}
	if payload["warning_picture"] != "https://pic/0103.gif" {
		t.Fatalf("picture URL should use the first alarm's two-part code, got %v", payload["warning_picture"])
	}
	records := payload["warnings"].([]map[string]any)
	if len(records) != 3 || records[2]["code"] != "0502" {
		t.Fatalf("unexpected warning records: %v", records)
	}
}

func TestAlarmsDecodeEmptyList(t *testing.T) {
	payload := Payload{}
	if err := (Alarms{}).Decode(&Context{}, payload, []any{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["warning"] != false {
		t.Fatal("expected has-warning false for empty alarm list")
	}
	if payload["warning_title"] != "" {
		t.Fatalf("expected empty title, got %q", payload["warning_title"])
	}
}

func TestIndicesDecode(t *testing.T) {
	payload := Payload{}
	value := map[string]any{
		"ct_name":  "穿衣",
		"ct_des_s": "较冷",
		"yd_name":  "运动",
		"yd_des_s": "较适宜",
		"xx_name":  "无描述",
	}
	if err := (Indices{}).Decode(&Context{}, payload, value); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := payload["indices"].(map[string]any)
	if out["穿衣"] != "较冷" || out["运动"] != "较适宜" {
		t.Fatalf("unexpected indices map: %v", out)
	}
	if _, ok := out["无描述"]; ok {
		t.Fatal("index without description must be skipped")
	}
}

func TestConditionUnknownCodeSkips(t *testing.T) {
	payload := Payload{}
	ctx := &Context{Snapshot: map[string]any{}}
	if err := (ConditionConv{}).Decode(ctx, payload, "d99"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := payload["condition"]; ok {
		t.Fatal("unknown weather code must not emit a condition")
	}
}
