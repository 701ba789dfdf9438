// Package token はJWTベアラートークンの発行と検証を提供する。
//
// トークンはHS256で署名され、ユーザーIDと有効期限（発行から1時間）を
// 自己完結的に保持する。サーバー側にセッション状態は一切持たない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークンが不正（形式不正・署名不一致・期限切れ）な場合に返される。
// 呼び出し元は失敗理由を区別できない。理由の詳細はクライアントに漏らさないため。
var ErrInvalidToken = errors.New("invalid token")

// TTL はトークンの有効期間。発行時刻からこの時間が経過すると検証に失敗する。
const TTL = time.Hour

// Claims はJWTトークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID int64 `json:"userId"`
}

// Identity は検証済みトークンから復元したユーザー参照。
// 1リクエストの処理中でのみ有効で、永続化されない。
type Identity struct {
	// UserID はトークンに埋め込まれていたユーザーID。
	UserID int64
}

// Verifier はトークン文字列を検証してIdentityを返すインタフェース。
// 認証ミドルウェアはこのインタフェース経由でServiceを利用する。
type Verifier interface {
	Verify(tokenString string) (Identity, error)
}

// Service はトークンの発行と検証を行う。
// 署名シークレットは起動時に設定から注入され、以降変更されない。
type Service struct {
	// secret はHS256署名用の共有シークレット。
	secret []byte
}

// NewService はシークレットを保持する新しいServiceを生成する。
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue はユーザーIDを埋め込んだ署名済みトークンを発行する。
// 有効期限は発行時刻から1時間後に設定される。
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークン文字列を検証し、埋め込まれたIdentityを返す。
// 形式不正・署名不一致・期限切れのいずれでもErrInvalidTokenを返す。
// 検証は純粋な計算で、外部I/Oやデータベース参照は行わない。
func (s *Service) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID}, nil
}
