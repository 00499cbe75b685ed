package logging

import (
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger and gin's request logger at stdout and,
// when path is non-empty, at a size-rotated log file.
// The returned closer flushes the file and is a no-op without one.
func Setup(path string) io.Closer {
	if path == "" {
		log.SetOutput(os.Stdout)
		gin.DefaultWriter = os.Stdout
		return nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	out := io.MultiWriter(os.Stdout, file)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
	log.Printf("Logging to %s", path)
	return file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
