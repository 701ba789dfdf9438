package itemapi

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/nao1215/itemapi/internal/config"
	"github.com/nao1215/itemapi/pkg/middleware"
	"github.com/nao1215/itemapi/pkg/migration"
	"github.com/nao1215/itemapi/pkg/token"
)

// loginUserID はloginが発行するトークンに埋め込むユーザーID。
// 資格情報の検証とユーザー永続化は未実装のため、固定のIDを使用する。
const loginUserID = 1

// Server はItem APIサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はitemsテーブルへの永続化層。
	store *Store
	// db はSQLiteデータベース接続。
	db *sql.DB
	// tokens はベアラートークンの発行・検証サービス。
	tokens *token.Service
}

// NewServer は新しいItem APIサーバーを生成する。
// SQLiteデータベースを開き、リスナーをバインドする前にスキーマを適用する。
func NewServer(cfg *config.Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", cfg.DatabasePath))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := migration.Apply(sqlDB, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router: router,
		port:   cfg.Port,
		store:  NewStore(sqlDB),
		db:     sqlDB,
		tokens: token.NewService(cfg.JWTSecret),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証不要のエンドポイント
	s.router.POST("/register", s.handleRegister())
	s.router.POST("/login", s.handleLogin())

	// 認証必須のアイテムエンドポイント
	items := s.router.Group("/items")
	items.Use(middleware.Auth(s.tokens))
	{
		// アイテム作成
		items.POST("", s.handleCreate())
		// アイテム一覧取得
		items.GET("", s.handleList())
		// アイテム詳細取得
		items.GET("/:id", s.handleGetByID())
		// アイテム更新
		items.PUT("/:id", s.handleUpdate())
		// アイテム削除
		items.DELETE("/:id", s.handleDelete())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "itemapi"})
	})
}

// credentialsRequest はregister/loginリクエストのJSON構造。
type credentialsRequest struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Password はパスワード。
	Password string `json:"password"`
}

// itemRequest はアイテム作成・更新リクエストのJSON構造。
// requiredタグは付けない。省略されたフィールドはゼロ値のまま保存値を上書きする。
type itemRequest struct {
	// Name はアイテム名。
	Name string `json:"name"`
	// Description はアイテムの説明。
	Description string `json:"description"`
	// Price は価格。
	Price float64 `json:"price"`
}

// itemResponse はアイテムのJSONレスポンス構造。
type itemResponse struct {
	// ID はアイテムの一意識別子。
	ID int64 `json:"id"`
	// Name はアイテム名。
	Name string `json:"name"`
	// Description はアイテムの説明。
	Description string `json:"description"`
	// Price は価格。
	Price float64 `json:"price"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// toItemResponse はDB行をJSONレスポンスに変換する。
func toItemResponse(item Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		CreatedAt:   item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// TODO: ユーザー登録を実装する。現在は資格情報を検証せず固定メッセージを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
	}
}

// handleLogin はログインを処理するハンドラを返す。
// TODO: 資格情報の検証を実装する。現在は固定ユーザーIDのトークンを常に発行する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		tokenStr, err := s.tokens.Issue(loginUserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": tokenStr})
	}
}

// handleCreate はアイテム作成を処理するハンドラを返す。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetUserID(c) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req itemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		created, err := s.store.Create(c.Request.Context(), req.Name, req.Description, req.Price)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
			log.Printf("アイテム作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toItemResponse(created))
	}
}

// handleList はアイテム一覧取得を処理するハンドラを返す。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetUserID(c) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		items, err := s.store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
			log.Printf("アイテム一覧取得エラー: %v", err)
			return
		}

		responses := make([]itemResponse, 0, len(items))
		for _, item := range items {
			responses = append(responses, toItemResponse(item))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleGetByID はアイテム詳細取得を処理するハンドラを返す。
func (s *Server) handleGetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetUserID(c) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		item, err := s.store.GetByID(c.Request.Context(), id)
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get item"})
			log.Printf("アイテム取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toItemResponse(item))
	}
}

// handleUpdate はアイテム更新を処理するハンドラを返す。
// 3つの可変フィールドすべてをリクエストの値で無条件に上書きする。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetUserID(c) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		var req itemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		updated, err := s.store.Update(c.Request.Context(), id, req.Name, req.Description, req.Price)
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
			log.Printf("アイテム更新エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toItemResponse(updated))
	}
}

// handleDelete はアイテム削除を処理するハンドラを返す。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetUserID(c) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		err := s.store.Delete(c.Request.Context(), id)
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			log.Printf("アイテム削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
	}
}

// itemIDParam はパスパラメータ:idを整数として取り出す。
// 数値として解釈できないIDは存在しないIDと同じ扱いで404を返す。
func itemIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return 0, false
	}
	return id, true
}
