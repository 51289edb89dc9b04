package fileprocessor

const (
	// lockFilePattern 目录锁文件名模板，%x 为目录绝对路径的哈希
	lockFilePattern = "image-tidy-%x.lock"

	// filePerm 新写入文件的权限
	filePerm = 0644
)
