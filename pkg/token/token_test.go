package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret はテスト用の署名シークレット。
const testSecret = "test-secret-key-for-unit-tests"

// TestServiceIssue はIssueメソッドを検証する。
func TestServiceIssue(t *testing.T) {
	t.Parallel()

	t.Run("発行したトークンが即座に検証できユーザーIDが一致すること", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testSecret)
		tokenStr, err := svc.Issue(42)
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("Issue()が空文字列を返した")
		}

		identity, err := svc.Verify(tokenStr)
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if identity.UserID != 42 {
			t.Errorf("UserID = %d, want %d", identity.UserID, 42)
		}
	})

	t.Run("トークンの有効期限が1時間後であること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		svc := NewService(testSecret)
		tokenStr, err := svc.Issue(1)
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		claims := &Claims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		expectedExpiry := before.Add(TTL)
		// 有効期限が1時間後の前後1分以内であること
		if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最小値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(-1*time.Minute))
		}
		if claims.ExpiresAt.Time.After(expectedExpiry.Add(1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最大値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(1*time.Minute))
		}
	})

	t.Run("IssuedAtが設定されていること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		svc := NewService(testSecret)
		tokenStr, err := svc.Issue(1)
		after := time.Now()
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		claims := &Claims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		if claims.IssuedAt.Time.Before(before.Add(-1 * time.Second)) {
			t.Errorf("IssuedAtが呼び出し前の時刻: %v < %v", claims.IssuedAt.Time, before)
		}
		if claims.IssuedAt.Time.After(after.Add(1 * time.Second)) {
			t.Errorf("IssuedAtが呼び出し後の時刻: %v > %v", claims.IssuedAt.Time, after)
		}
	})

	t.Run("署名アルゴリズムがHS256であること", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testSecret)
		tokenStr, err := svc.Issue(1)
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		parsed, _, err := new(jwt.Parser).ParseUnverified(tokenStr, &Claims{})
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if parsed.Method.Alg() != "HS256" {
			t.Errorf("署名アルゴリズム = %q, want %q", parsed.Method.Alg(), "HS256")
		}
	})
}

// TestServiceVerify はVerifyメソッドを検証する。
func TestServiceVerify(t *testing.T) {
	t.Parallel()

	t.Run("形式不正なトークンでErrInvalidTokenが返ること", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testSecret)
		if _, err := svc.Verify("not-a-jwt-at-all"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("空文字列のトークンでErrInvalidTokenが返ること", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testSecret)
		if _, err := svc.Verify(""); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("異なるシークレットで署名されたトークンでErrInvalidTokenが返ること", func(t *testing.T) {
		t.Parallel()

		other := NewService("different-secret")
		tokenStr, err := other.Issue(7)
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		svc := NewService(testSecret)
		if _, err := svc.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("期限切れトークンでErrInvalidTokenが返ること", func(t *testing.T) {
		t.Parallel()

		// 期限切れのクレームを手動で生成する
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
			UserID: 42,
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		svc := NewService(testSecret)
		if _, err := svc.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("署名アルゴリズムがHS256以外の場合ErrInvalidTokenが返ること", func(t *testing.T) {
		t.Parallel()

		// alg=noneのトークンはペイロードが正しくても拒否されること
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: 1,
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		svc := NewService(testSecret)
		if _, err := svc.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}
