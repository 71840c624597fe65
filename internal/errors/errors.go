package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/logger"
)

// Format renders err for the terminal with an "Error: " prefix, followed by
// a hint line for failures the user can act on.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if h := hint(err); h != "" {
		msg += "\n" + h
	}
	return msg
}

func hint(err error) string {
	var (
		parse       *ParseError
		unsupported *UnsupportedFileType
	)
	switch {
	case IsRemote(err):
		return fmt.Sprintf("Run '%s doctor' to check the store connection.", constants.AppName)
	case stderrors.As(err, &parse):
		return "Nothing was imported."
	case stderrors.As(err, &unsupported):
		return "Import accepts .json and .csv files."
	}
	return ""
}

// logFields names the entity and key of a store failure.
func logFields(err error) []interface{} {
	fields := []interface{}{"error", err}
	var (
		fetch *RemoteFetchError
		write *RemoteWriteError
	)
	switch {
	case stderrors.As(err, &fetch):
		fields = append(fields, "op", "fetch", "entity", fetch.Entity, "key", fetch.Key)
	case stderrors.As(err, &write):
		fields = append(fields, "op", "write", "entity", write.Entity, "key", write.Key)
	}
	return fields
}

// Fatal logs err, prints it and exits with code 1. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", logFields(err)...)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}
