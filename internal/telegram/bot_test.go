package telegram

import (
	"testing"

	"github.com/gumruyanzh/telegram-task-bot/internal/usecase"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		cmd  string
		args string
	}{
		{"/tasks", "tasks", ""},
		{"/createtask @john Clean office 09:00 daily", "createtask", "@john Clean office 09:00 daily"},
		{"/removetask@taskbot 5", "removetask", "5"},
		{"  /HELP  ", "help", ""},
		{"hello", "", ""},
	}
	for _, tc := range cases {
		cmd, args := parseCommand(tc.in)
		if cmd != tc.cmd || args != tc.args {
			t.Fatalf("parseCommand(%q) = (%q, %q), want (%q, %q)", tc.in, cmd, args, tc.cmd, tc.args)
		}
	}
}

func TestParseCallbackData(t *testing.T) {
	id, answer, ok := parseCallbackData("task:42:yes")
	if !ok || id != 42 || answer != usecase.AnswerYes {
		t.Fatalf("parseCallbackData = (%d, %q, %v)", id, answer, ok)
	}
	id, answer, ok = parseCallbackData("task:7:no")
	if !ok || id != 7 || answer != usecase.AnswerNo {
		t.Fatalf("parseCallbackData = (%d, %q, %v)", id, answer, ok)
	}
	for _, in := range []string{"", "task:42", "task:x:yes", "task:42:maybe", "other:42:yes", "task:-1:yes"} {
		if _, _, ok := parseCallbackData(in); ok {
			t.Fatalf("parseCallbackData(%q) unexpectedly ok", in)
		}
	}
}
