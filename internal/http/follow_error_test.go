package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/user-service/internal/apperr"
)

func TestFollowErrorPartialResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	pe := &apperr.PartialError{
		Op: "follow",
		Sides: []apperr.Side{
			{Name: "user.followers", Applied: true},
			{Name: "follower.following", Err: errors.New("write timeout")},
		},
	}
	followError(c, pe)

	if w.Code != 403 {
		t.Fatalf("code = %d", w.Code)
	}
	var body struct {
		Message string   `json:"message"`
		Applied []string `json:"applied"`
		Failed  []string `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v; body=%s", err, w.Body.String())
	}
	if !strings.Contains(body.Message, "partially applied") {
		t.Fatalf("message: %s", body.Message)
	}
	if len(body.Applied) != 1 || body.Applied[0] != "user.followers" {
		t.Fatalf("applied = %v", body.Applied)
	}
	if len(body.Failed) != 1 || body.Failed[0] != "follower.following" {
		t.Fatalf("failed = %v", body.Failed)
	}
}

func TestFollowErrorPlain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	followError(c, apperr.ErrNotFound)

	if w.Code != 403 {
		t.Fatalf("code = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "not found" {
		t.Fatalf("message = %v", body["message"])
	}
	if _, ok := body["applied"]; ok {
		t.Fatal("plain failure must not carry side info")
	}
}
