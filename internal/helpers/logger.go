package helpers

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogDir is where file-backed loggers write. Overridable before InitLogger.
var LogDir = "."

var SDKLog *QLogger
var AssetLog *QLogger

type QLogger struct {
	*log.Logger
	rotate    bool
	console   bool
	lumLogger *lumberjack.Logger
}

func (q *QLogger) Close() {
	if q.lumLogger != nil {
		q.lumLogger.Close()
	}
}

func (q *QLogger) Infof(format string, args ...interface{}) {
	q.Logger.Printf("[INFO] "+format, args...)
}

func (q *QLogger) Info(format string) {
	q.Logger.Println("[INFO] " + format)
}

func (q *QLogger) Debugf(format string, args ...interface{}) {
	q.Logger.Printf("[DEBUG] "+format, args...)
}

func (q *QLogger) Debug(format string) {
	q.Logger.Println("[DEBUG] " + format)
}

func (q *QLogger) Errorf(format string, args ...interface{}) {
	q.Logger.Printf("[ERROR] "+format, args...)
}

func (q *QLogger) Error(format string) {
	q.Logger.Println("[ERROR] " + format)
}

func (q *QLogger) Warnf(format string, args ...interface{}) {
	q.Logger.Printf("[WARN] "+format, args...)
}

func (q *QLogger) Warn(format string) {
	q.Logger.Println("[WARN] " + format)
}

func NewLogger(logFileName string, isConsole bool, rotate bool) *QLogger {
	logFile := filepath.Join(LogDir, logFileName)
	var lumLogger *lumberjack.Logger
	var writers []io.Writer

	if rotate {
		lumLogger = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		if isConsole {
			writers = append(writers, lumLogger, os.Stdout)
		} else {
			writers = append(writers, lumLogger)
		}
	} else {
		fd, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Failed to open log file: %v", err)
			writers = append(writers, os.Stdout)
		} else {
			if isConsole {
				writers = append(writers, fd, os.Stdout)
			} else {
				writers = append(writers, fd)
			}
		}
	}
	multiWriter := io.MultiWriter(writers...)

	logger := log.New(multiWriter, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &QLogger{
		Logger:    logger,
		rotate:    rotate,
		console:   isConsole,
		lumLogger: lumLogger,
	}
}

// ConsoleLogger returns a stdout-only logger, used until InitLogger is called.
func ConsoleLogger() *QLogger {
	return &QLogger{
		Logger:  log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		console: true,
	}
}

// InitLogger sets up the file-backed loggers under dir.
func InitLogger(dir string) {
	if dir != "" {
		LogDir = dir
	}
	SDKLog = NewLogger("qdrive.log", false, true)
	AssetLog = NewLogger("qdrive_asset.log", false, true)
}

func CloseLogger() {
	if SDKLog != nil {
		SDKLog.Close()
	}
	if AssetLog != nil {
		AssetLog.Close()
	}
}

func RotateLog() {
	if SDKLog != nil && SDKLog.rotate {
		SDKLog.lumLogger.Rotate()
	}
	if AssetLog != nil && AssetLog.rotate {
		AssetLog.lumLogger.Rotate()
	}
}
