// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Thermoquad/sspctl/pkg/config"
)

func TestWebSocketConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("Aud3\r\n"))
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- string(data)
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := OpenWebSocketConnection(context.Background(), wsURL, false, time.Second)
	if err != nil {
		t.Fatalf("OpenWebSocketConnection() error = %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 3)
	var got []byte
	for len(got) < 6 {
		n, err := conn.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != "Aud3\r\n" {
		t.Errorf("read %q, want %q", got, "Aud3\r\n")
	}

	if _, err := conn.Write([]byte("V\r\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	select {
	case msg := <-received:
		if msg != "V\r\n" {
			t.Errorf("server got %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server received nothing")
	}
}

func TestOpenWebSocketConnection_BadScheme(t *testing.T) {
	_, err := OpenWebSocketConnection(context.Background(), "http://example.com", false, time.Second)
	if err == nil || !strings.Contains(err.Error(), "unsupported URL scheme") {
		t.Errorf("error = %v", err)
	}
}

func TestNewDialer(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SwitcherConfig
		wantInfo string
		wantErr  bool
	}{
		{"tcp", config.SwitcherConfig{Transport: "tcp", Address: "ssp.local", Port: 2001}, "TCP: ssp.local:2001", false},
		{"tcp no address", config.SwitcherConfig{Transport: "tcp", Port: 2001}, "", true},
		{"serial", config.SwitcherConfig{Transport: "serial", SerialPort: "/dev/ttyUSB0", Baud: 9600}, "Serial: /dev/ttyUSB0 @ 9600 baud", false},
		{"serial no port", config.SwitcherConfig{Transport: "serial"}, "", true},
		{"websocket", config.SwitcherConfig{Transport: "websocket", URL: "ws://bridge.local/ws"}, "WebSocket: ws://bridge.local/ws", false},
		{"websocket no url", config.SwitcherConfig{Transport: "websocket"}, "", true},
		{"unknown", config.SwitcherConfig{Transport: "udp"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dial, info, err := NewDialer(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewDialer() error = nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDialer() error = %v", err)
			}
			if dial == nil {
				t.Error("NewDialer() returned nil DialFunc")
			}
			if info != tt.wantInfo {
				t.Errorf("info = %q, want %q", info, tt.wantInfo)
			}
		})
	}
}
