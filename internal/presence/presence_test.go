package presence

import "testing"

func TestOnlineKey(t *testing.T) {
	if got := OnlineKey("user-1"); got != "presence:online:user-1" {
		t.Fatalf("key = %s", got)
	}
}
