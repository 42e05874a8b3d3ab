package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/marketbay/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestSequenceNextIsMonotonic(t *testing.T) {
	repo := setupSequenceRepositoryTest(t)

	var last int64
	for i := 1; i <= 10; i++ {
		value, err := repo.Next("order")
		if err != nil {
			t.Fatalf("next failed: %v", err)
		}
		if value != int64(i) {
			t.Fatalf("expected %d, got %d", i, value)
		}
		if value <= last {
			t.Fatalf("expected monotonic values, got %d after %d", value, last)
		}
		last = value
	}
}

func TestSequenceNamespacesAreIndependent(t *testing.T) {
	repo := setupSequenceRepositoryTest(t)

	if _, err := repo.Next("order"); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if _, err := repo.Next("order"); err != nil {
		t.Fatalf("next failed: %v", err)
	}

	value, err := repo.Next("withdrawal")
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if value != 1 {
		t.Fatalf("expected independent counter to start at 1, got %d", value)
	}

	current, err := repo.Current("order")
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if current != 2 {
		t.Fatalf("expected current 2, got %d", current)
	}
	// Current 不推进计数器
	if current2, _ := repo.Current("order"); current2 != 2 {
		t.Fatalf("expected current unchanged, got %d", current2)
	}
}

func TestSequenceNextConcurrentAllocationsAreDistinct(t *testing.T) {
	repo := setupSequenceRepositoryTest(t)

	const workers = 8
	const perWorker = 5

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				value, err := repo.Next("transaction")
				if err != nil {
					errCh <- err
					return
				}
				mu.Lock()
				if seen[value] {
					mu.Unlock()
					errCh <- fmt.Errorf("duplicate sequence value %d", value)
					return
				}
				seen[value] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		t.Fatalf("concurrent allocation failed: %v", err)
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d distinct values, got %d", workers*perWorker, len(seen))
	}
}

func TestSequenceRejectsEmptyName(t *testing.T) {
	repo := setupSequenceRepositoryTest(t)

	if _, err := repo.Next(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := repo.Current(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func setupSequenceRepositoryTest(t *testing.T) *GormSequenceRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:sequence_repository_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	// sqlite 单写者，串行化连接避免测试里出现 busy 错误
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.SequenceCounter{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewSequenceRepository(db)
}
