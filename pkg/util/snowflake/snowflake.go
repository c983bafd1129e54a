package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init 初始化雪花算法节点，只有第一次调用生效
// 镜像服务用它为新建文档分配服务端标识
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("failed to initialize snowflake node", zap.Error(err))
		}
		zap.L().Info("snowflake node initialized", zap.Int64("machineID", machineID))
	})
}

// GenerateIDString 生成雪花 ID 字符串，未初始化时使用节点 1
func GenerateIDString() string {
	if node == nil {
		Init(1)
	}
	return node.Generate().String()
}
