// Package queue 定义文件生命周期事件的主题、负载与消息信封.
package queue

// 主题命名规范：cd.<域>.<动作>，尽量稳定且向后兼容.
// 域：file（元数据记录）、blob（对象存储中的字节）.

const (
	// 文件领域.
	TopicFileUploaded  = "cd.file.uploaded"  // 对象与元数据均已写入
	TopicFileAccessed  = "cd.file.accessed"  // 签发了下载链接
	TopicFileStarred   = "cd.file.starred"   // 加星
	TopicFileUnstarred = "cd.file.unstarred" // 取消加星
	TopicFileTrashed   = "cd.file.trashed"   // 移入回收站
	TopicFileRestored  = "cd.file.restored"  // 从回收站恢复
	TopicFilePurged    = "cd.file.purged"    // 对象与元数据均已删除

	// 对象领域.
	TopicBlobOrphaned = "cd.blob.orphaned" // 对象已写入但元数据缺失，需要人工处理
)

// 主题分组，用于批量订阅或调试输出.
var (
	// FileTopics 文件生命周期主题.
	FileTopics = []string{
		TopicFileUploaded, TopicFileAccessed,
		TopicFileStarred, TopicFileUnstarred,
		TopicFileTrashed, TopicFileRestored,
		TopicFilePurged,
	}

	// AuditTopics 进程内审计消费者关注的主题.
	AuditTopics = []string{TopicBlobOrphaned, TopicFilePurged}
)

// AllTopics 返回全部主题.
func AllTopics() []string {
	return append(append([]string{}, FileTopics...), TopicBlobOrphaned)
}
