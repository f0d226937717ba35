package results

import "testing"

func TestOkCarriesPayload(t *testing.T) {
	res := Ok("GAME_ADDED", "Game registered", 42)
	if !res.Success {
		t.Fatal("Success = false")
	}
	if res.Code != "GAME_ADDED" || res.Message != "Game registered" || res.Data != 42 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Error != "" {
		t.Errorf("Error set on success: %q", res.Error)
	}
}

func TestFailSeparatesMessageFromDiagnostic(t *testing.T) {
	res := Fail[struct{}]("BANNER_INSERT_FAILED", "Failed to save the new banner", "pq: duplicate key")
	if res.Success {
		t.Fatal("Success = true")
	}
	if res.Message != "Failed to save the new banner" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Error != "pq: duplicate key" {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestRecodePreservesMessageAndError(t *testing.T) {
	inner := Fail[int]("BANNER_INSERT_FAILED", "Failed to save the new banner", "boom")
	outer := Recode[string]("CREATE_BANNER_FAILED", inner)

	if outer.Success {
		t.Fatal("Success = true")
	}
	if outer.Code != "CREATE_BANNER_FAILED" {
		t.Errorf("Code = %s", outer.Code)
	}
	if outer.Message != inner.Message {
		t.Errorf("Message = %q, want %q", outer.Message, inner.Message)
	}
	if outer.Error != inner.Error {
		t.Errorf("Error = %q, want %q", outer.Error, inner.Error)
	}
}
