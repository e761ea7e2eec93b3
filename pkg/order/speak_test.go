package order_test

import (
	"testing"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/order"
)

func TestSpeakCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "zero dollars"},
		{1, "one cent"},
		{99, "ninety-nine cents"},
		{100, "one dollar"},
		{101, "one dollar and one cent"},
		{349, "three dollars and forty-nine cents"},
		{1097, "ten dollars and ninety-seven cents"},
		{1196, "eleven dollars and ninety-six cents"},
		{2500, "twenty-five dollars"},
		{11718, "one hundred and seventeen dollars and eighteen cents"},
		{50000, "five hundred dollars"},
		{123456, "one thousand two hundred and thirty-four dollars and fifty-six cents"},
	}
	for _, tt := range tests {
		if got := order.SpeakCents(menu.Cents(tt.cents)); got != tt.want {
			t.Errorf("SpeakCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestSpeakDigits(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{401, "four zero one"},
		{100, "one zero zero"},
		{7, "seven"},
		{999, "nine nine nine"},
	}
	for _, tt := range tests {
		if got := order.SpeakDigits(tt.n); got != tt.want {
			t.Errorf("SpeakDigits(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
