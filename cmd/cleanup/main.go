package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/pkg/oss"
)

var (
	dryRun       = flag.Bool("dry-run", true, "Dry run mode, don't actually delete anything")
	userExpire   = flag.Int("user-expire", 24, "Hours after verification expiry before unverified accounts are removed")
	fileKeepDays = flag.Int("file-keep-days", 7, "Days to keep OSS files no longer referenced by the knowledge base")
	cleanUsers   = flag.Bool("clean-users", true, "Remove expired unverified accounts")
	cleanFiles   = flag.Bool("clean-files", true, "Remove orphaned knowledge base files from OSS")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	deletedUsers := 0
	deletedFiles := 0

	// 1. 清理过期未验证账号
	if *cleanUsers {
		log.Printf("\n👤 Cleaning unverified accounts (expired more than %d hours ago)...", *userExpire)
		deletedUsers = cleanExpiredUsers(db, *userExpire, *dryRun)
	}

	// 2. 清理知识库不再引用的 OSS 文件
	if *cleanFiles {
		log.Printf("\n📦 Cleaning orphaned knowledge base files (older than %d days)...", *fileKeepDays)
		deletedFiles = cleanOrphanedFiles(db, cfg, *fileKeepDays, *dryRun)
	}

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Cleanup Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Deleted users: %d", deletedUsers)
	log.Printf("Deleted files: %d", deletedFiles)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - Nothing was actually deleted")
		log.Println("   Run with -dry-run=false to actually delete")
	} else {
		log.Println("\n✅ Cleanup completed!")
	}
	log.Println(strings.Repeat("=", 60))
}

// cleanExpiredUsers 删除验证码过期超过 N 小时且始终未验证的账号
func cleanExpiredUsers(db *gorm.DB, expireHours int, dryRun bool) int {
	cutoff := time.Now().Add(-time.Duration(expireHours) * time.Hour)

	var users []model.User
	err := db.Where("email_verified = ? AND verification_expires_at IS NOT NULL AND verification_expires_at < ?", false, cutoff).
		Find(&users).Error
	if err != nil {
		log.Printf("Failed to query unverified users: %v", err)
		return 0
	}

	for _, user := range users {
		email := ""
		if user.Email != nil {
			email = *user.Email
		}
		log.Printf("  - user %d (%s, registered %s)",
			user.ID, email, user.CreatedAt.Format("2006-01-02"))

		if !dryRun {
			if err := db.Delete(&model.User{}, user.ID).Error; err != nil {
				log.Printf("    ❌ Failed to delete: %v", err)
				continue
			}
			// 未验证账号只有 free 订阅行，一并清掉
			db.Where("user_id = ?", user.ID).Delete(&model.Subscription{})
		}
	}

	log.Printf("Found %d expired unverified accounts", len(users))
	return len(users)
}

// cleanOrphanedFiles 删除知识库已不再引用的 OSS 文件
func cleanOrphanedFiles(db *gorm.DB, cfg *config.Config, keepDays int, dryRun bool) int {
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Printf("Failed to create OSS client: %v", err)
		return 0
	}

	// 知识库当前引用的所有文件 key
	var entries []model.KnowledgeEntry
	if err := db.Where("file_url <> ''").Find(&entries).Error; err != nil {
		log.Printf("Failed to query knowledge entries: %v", err)
		return 0
	}
	referenced := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		referenced[ossClient.ExtractObjectKey(entry.FileURL)] = struct{}{}
	}

	objects, err := ossClient.ListKnowledgeFiles()
	if err != nil {
		log.Printf("Failed to list OSS objects: %v", err)
		return 0
	}

	// 为了安全，只删除超过 N 天的旧文件
	expireTime := time.Now().Add(-time.Duration(keepDays) * 24 * time.Hour)
	count := 0
	for _, object := range objects {
		if _, ok := referenced[object.Key]; ok {
			continue
		}
		if object.LastModified.After(expireTime) {
			continue
		}

		log.Printf("  - %s (%.2f KB, %s old)",
			object.Key,
			float64(object.Size)/1024,
			time.Since(object.LastModified).Round(time.Hour))

		if !dryRun {
			if err := ossClient.Delete(object.Key); err != nil {
				log.Printf("    ❌ Failed to delete: %v", err)
				continue
			}
		}
		count++
	}

	log.Printf("Found %d orphaned files", count)
	return count
}

// connectDB 连接数据库
func connectDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
