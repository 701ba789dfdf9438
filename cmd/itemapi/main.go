// Item APIサービスのエントリポイント。
// ベアラートークン認証付きのアイテムCRUDエンドポイントを公開する。
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/nao1215/itemapi/internal/config"
	"github.com/nao1215/itemapi/internal/itemapi"
)

func main() {
	// .envファイルは任意。存在しない場合は環境変数をそのまま使用する。
	_ = godotenv.Load()

	cfg := config.Load()

	server, err := itemapi.NewServer(cfg)
	if err != nil {
		log.Fatalf("Item APIサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Item APIサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Item APIサービスの起動に失敗: %v", err)
	}
}
