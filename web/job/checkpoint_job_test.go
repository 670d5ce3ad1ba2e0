package job

import (
	"context"
	"os"
	"testing"

	"kaban/database"
	"kaban/web/global"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
)

type stubServer struct {
	ctx context.Context
}

func (s *stubServer) GetCron() *cron.Cron     { return nil }
func (s *stubServer) GetCtx() context.Context { return s.ctx }

func TestCheckpointJob(t *testing.T) {
	dbPath := "job_test.db"
	os.Remove(dbPath)
	assert.NoError(t, database.InitDB(dbPath))
	defer func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	global.SetWebServer(&stubServer{ctx: ctx})

	job := NewCheckpointJob()
	job.Run()

	// A cancelled server context turns the job into a no-op; it must not
	// touch the database or panic.
	cancel()
	job.Run()
}
