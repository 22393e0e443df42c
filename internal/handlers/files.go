package handlers

import (
	"github.com/reclaim/viewerhost/internal/fileaccess"
	"github.com/reclaim/viewerhost/internal/messaging"
)

// Files is the file access surface the handlers need. *fileaccess.Accessor
// implements it.
type Files interface {
	FullPath(suffix string) string
	Load(suffix string) fileaccess.LoadResult
	Save(suffix, contents string) fileaccess.SaveResult
}

// HandleGetFullPath returns the resolved target path. An empty path means no
// file was given on launch; that is still a successful answer.
func HandleGetFullPath(msg *messaging.Message, files Files) messaging.Response {
	return messaging.Response{
		Success:  true,
		FullPath: files.FullPath(msg.Suffix),
	}
}

// HandleLoad reads the target file. On failure fullpath and contents are both
// empty and error carries the status, so the viewer can tell a missing file
// from an empty one.
func HandleLoad(msg *messaging.Message, files Files) messaging.Response {
	res := files.Load(msg.Suffix)
	if !res.OK() {
		return failure(res.Status, res.Err)
	}
	return messaging.Response{
		Success:  true,
		FullPath: res.File.FullPath,
		Contents: res.File.Contents,
		Status:   string(res.Status),
	}
}

// HandleSave writes msg.Contents to the target file
func HandleSave(msg *messaging.Message, files Files) messaging.Response {
	res := files.Save(msg.Suffix, msg.Contents)
	if !res.OK() {
		resp := failure(res.Status, res.Err)
		resp.FullPath = res.Path
		return resp
	}
	return messaging.Response{
		Success:  true,
		FullPath: res.Path,
		Status:   string(res.Status),
	}
}

func failure(status fileaccess.Status, err error) messaging.Response {
	resp := messaging.Response{
		Success: false,
		Error:   string(status),
		Status:  string(status),
		Message: statusMessages[status],
	}
	if err != nil {
		resp.Message = err.Error()
	}
	return resp
}

var statusMessages = map[fileaccess.Status]string{
	fileaccess.StatusNotConfigured: "No file was given when the viewer was launched",
}
