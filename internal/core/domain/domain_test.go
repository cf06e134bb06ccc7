package domain

import (
	"testing"
	"time"
)

func TestDollarsToCents(t *testing.T) {
	cases := []struct {
		in      float64
		want    Cents
		wantErr bool
	}{
		{1, 100, false},
		{1.1, 110, false},
		{970, 97000, false},
		{0.01, 1, false},
		{1.105, 0, true},
		{0.001, 0, true},
		{-10.25, -1025, false},
	}
	for _, tc := range cases {
		got, err := DollarsToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("DollarsToCents(%v): want error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("DollarsToCents(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DollarsToCents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCentsDollars(t *testing.T) {
	if got := Cents(-100000).Dollars(); got != -1000.0 {
		t.Fatalf("Dollars() = %v, want -1000", got)
	}
}

func TestNetPosition(t *testing.T) {
	orders := []*Order{
		{SupplierID: "a", ConsumerID: "b", Price: 2500},
		{SupplierID: "b", ConsumerID: "a", Price: 1000},
		{SupplierID: "c", ConsumerID: "b", Price: 500},
	}
	for _, tc := range []struct {
		client string
		want   Cents
	}{
		{"a", 1500},
		{"b", -2000},
		{"c", 500},
		{"unrelated", 0},
	} {
		if got := NetPosition(tc.client, orders); got != tc.want {
			t.Errorf("NetPosition(%s) = %d, want %d", tc.client, got, tc.want)
		}
	}
	if got := NetPosition("a", nil); got != 0 {
		t.Errorf("empty order set must net to 0, got %d", got)
	}
}

func TestNewOrderKey(t *testing.T) {
	a := NewOrderKey("  Big Deal ", "s1", "c1")
	b := NewOrderKey("big deal", "s1", "c1")
	if a != b {
		t.Fatalf("keys must match case-insensitively after trimming: %+v vs %+v", a, b)
	}
	if swapped := NewOrderKey("big deal", "c1", "s1"); swapped == a {
		t.Fatal("swapped supplier/consumer roles must produce a distinct key")
	}
}

func TestClientDeactivateActivate(t *testing.T) {
	c := &Client{Active: true}

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !c.Deactivate(t1) {
		t.Fatal("first deactivation must report a transition")
	}
	if c.Active || c.DeactivatedAt == nil || !c.DeactivatedAt.Equal(t1) {
		t.Fatalf("after deactivation: %+v", c)
	}

	t2 := t1.Add(time.Hour)
	if c.Deactivate(t2) {
		t.Fatal("repeat deactivation must be a no-op")
	}
	if !c.DeactivatedAt.Equal(t1) {
		t.Fatalf("repeat deactivation moved the timestamp to %v", c.DeactivatedAt)
	}

	if !c.Activate() {
		t.Fatal("activation must report a transition")
	}
	if !c.Active || c.DeactivatedAt != nil {
		t.Fatalf("after activation: %+v", c)
	}
	if c.Activate() {
		t.Fatal("repeat activation must be a no-op")
	}
}

func TestClientInactiveAsOf(t *testing.T) {
	deact := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	inactive := &Client{Active: false, DeactivatedAt: &deact}
	if !inactive.InactiveAsOf(deact.Add(-time.Hour)) {
		t.Fatal("a currently inactive client is inactive for any window")
	}

	active := &Client{Active: true}
	if active.InactiveAsOf(deact) {
		t.Fatal("an active client with no deactivation record is admissible")
	}

	// A lingering deactivation record at or before the window end makes the
	// client stale even while marked active.
	flapped := &Client{Active: true, DeactivatedAt: &deact}
	if !flapped.InactiveAsOf(deact) {
		t.Fatal("deactivation exactly at the window end must count")
	}
	if !flapped.InactiveAsOf(deact.Add(time.Second)) {
		t.Fatal("deactivation before the window end must count")
	}
	if flapped.InactiveAsOf(deact.Add(-time.Second)) {
		t.Fatal("deactivation after the window end must not count")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Mail.Test "); got != "alice@mail.test" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
