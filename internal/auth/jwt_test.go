package auth

import (
	"testing"
	"time"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts := TokenService{Secret: []byte("s3cret"), Issuer: "coursehub", Duration: time.Hour}
	u := &User{ID: "u1", Username: "ada", Email: "ada@example.com", TokenVersion: 3}

	tok, exp, err := ts.Sign(u)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Errorf("exp = %v", exp)
	}

	claims, err := ts.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "ada" || claims.TokenVersion != 3 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenService_Rejects(t *testing.T) {
	ts := TokenService{Secret: []byte("s3cret"), Issuer: "coursehub", Duration: time.Hour}
	u := &User{ID: "u1"}

	other := TokenService{Secret: []byte("other"), Issuer: "coursehub", Duration: time.Hour}
	tok, _, _ := other.Sign(u)
	if _, err := ts.Parse(tok); err == nil {
		t.Error("accepted token signed with another secret")
	}

	wrongIss := TokenService{Secret: []byte("s3cret"), Issuer: "elsewhere", Duration: time.Hour}
	tok, _, _ = wrongIss.Sign(u)
	if _, err := ts.Parse(tok); err == nil {
		t.Error("accepted token from another issuer")
	}

	expired := TokenService{Secret: []byte("s3cret"), Issuer: "coursehub", Duration: -time.Minute}
	tok, _, _ = expired.Sign(u)
	if _, err := ts.Parse(tok); err == nil {
		t.Error("accepted expired token")
	}

	if _, err := ts.Parse("not.a.token"); err == nil {
		t.Error("accepted garbage")
	}
}
