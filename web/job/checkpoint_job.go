package job

import (
	"kaban/database"
	"kaban/logger"
	"kaban/util/common"
	"kaban/web/global"
)

type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

// Here Run is an interface method of the cron Job interface
func (j *CheckpointJob) Run() {
	defer common.Recover("checkpoint job")

	// Shutdown closes the database right after cancelling the server
	// context; don't checkpoint into that.
	if s := global.GetWebServer(); s != nil && s.GetCtx().Err() != nil {
		return
	}

	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
