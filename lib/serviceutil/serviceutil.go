package serviceutil

import (
	"log/slog"
	"os"
)

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
