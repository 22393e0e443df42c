package handlers

import (
	"errors"
	"strings"
	"testing"

	"github.com/reclaim/viewerhost/internal/fileaccess"
	"github.com/reclaim/viewerhost/internal/messaging"
)

// MockFiles implements Files for testing
type MockFiles struct {
	Path       string
	LoadResult fileaccess.LoadResult
	SaveResult fileaccess.SaveResult

	Suffixes []string
	Saved    []string
}

func (m *MockFiles) FullPath(suffix string) string {
	m.Suffixes = append(m.Suffixes, suffix)
	return m.Path
}

func (m *MockFiles) Load(suffix string) fileaccess.LoadResult {
	m.Suffixes = append(m.Suffixes, suffix)
	return m.LoadResult
}

func (m *MockFiles) Save(suffix, contents string) fileaccess.SaveResult {
	m.Suffixes = append(m.Suffixes, suffix)
	m.Saved = append(m.Saved, contents)
	return m.SaveResult
}

func TestHandleGetFullPath(t *testing.T) {
	mock := &MockFiles{Path: "/home/u/notes.txt.bak"}

	resp := HandleGetFullPath(&messaging.Message{Action: "getFullPath", Suffix: ".bak"}, mock)

	if !resp.Success {
		t.Errorf("Expected success=true, got false")
	}
	if resp.FullPath != "/home/u/notes.txt.bak" {
		t.Errorf("Expected fullPath '/home/u/notes.txt.bak', got '%s'", resp.FullPath)
	}
	if len(mock.Suffixes) != 1 || mock.Suffixes[0] != ".bak" {
		t.Errorf("Expected suffix '.bak' to be passed through, got %v", mock.Suffixes)
	}
}

func TestHandleGetFullPath_NoTarget(t *testing.T) {
	resp := HandleGetFullPath(&messaging.Message{Action: "getFullPath"}, &MockFiles{})

	if !resp.Success {
		t.Errorf("Expected success=true for the empty-path answer")
	}
	if resp.FullPath != "" {
		t.Errorf("Expected empty fullPath, got '%s'", resp.FullPath)
	}
}

func TestHandleLoad_Success(t *testing.T) {
	mock := &MockFiles{
		LoadResult: fileaccess.LoadResult{
			File:   fileaccess.LoadedFile{FullPath: "/home/u/notes.txt", Contents: "hello"},
			Status: fileaccess.StatusOK,
		},
	}

	resp := HandleLoad(&messaging.Message{Action: "load"}, mock)

	if !resp.Success {
		t.Errorf("Expected success=true, got false: %s", resp.Message)
	}
	if resp.FullPath != "/home/u/notes.txt" {
		t.Errorf("Expected fullPath '/home/u/notes.txt', got '%s'", resp.FullPath)
	}
	if resp.Contents != "hello" {
		t.Errorf("Expected contents 'hello', got '%s'", resp.Contents)
	}
	if resp.Error != "" {
		t.Errorf("Expected no error, got '%s'", resp.Error)
	}
}

func TestHandleLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		result  fileaccess.LoadResult
		wantErr string
		wantMsg string
	}{
		{
			name:    "not configured",
			result:  fileaccess.LoadResult{Status: fileaccess.StatusNotConfigured},
			wantErr: "not_configured",
			wantMsg: "No file was given",
		},
		{
			name: "not found",
			result: fileaccess.LoadResult{
				Status: fileaccess.StatusNotFound,
				Err:    errors.New("open /home/u/missing.txt: file does not exist"),
			},
			wantErr: "not_found",
			wantMsg: "/home/u/missing.txt",
		},
		{
			name: "decode failed",
			result: fileaccess.LoadResult{
				Status: fileaccess.StatusDecodeFailed,
				Err:    errors.New("decode /home/u/blob.bin: contents are not valid UTF-8 text"),
			},
			wantErr: "decode_failed",
			wantMsg: "not valid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := HandleLoad(&messaging.Message{Action: "load"}, &MockFiles{LoadResult: tt.result})

			if resp.Success {
				t.Error("Expected success=false")
			}
			if resp.Error != tt.wantErr {
				t.Errorf("Expected error '%s', got '%s'", tt.wantErr, resp.Error)
			}
			if resp.FullPath != "" || resp.Contents != "" {
				t.Errorf("Expected empty sentinel, got fullPath=%q contents=%q", resp.FullPath, resp.Contents)
			}
			if !strings.Contains(resp.Message, tt.wantMsg) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestHandleSave_Success(t *testing.T) {
	mock := &MockFiles{
		SaveResult: fileaccess.SaveResult{Path: "/home/u/notes.txt", Status: fileaccess.StatusOK},
	}

	resp := HandleSave(&messaging.Message{Action: "save", Suffix: "", Contents: "new body"}, mock)

	if !resp.Success {
		t.Errorf("Expected success=true, got false: %s", resp.Message)
	}
	if resp.FullPath != "/home/u/notes.txt" {
		t.Errorf("Expected fullPath '/home/u/notes.txt', got '%s'", resp.FullPath)
	}
	if len(mock.Saved) != 1 || mock.Saved[0] != "new body" {
		t.Errorf("Expected contents 'new body' to be saved, got %v", mock.Saved)
	}
	if resp.Contents != "" {
		t.Errorf("Save response should not echo contents, got '%s'", resp.Contents)
	}
}

func TestHandleSave_Failure(t *testing.T) {
	mock := &MockFiles{
		SaveResult: fileaccess.SaveResult{
			Path:   "/readonly/notes.txt",
			Status: fileaccess.StatusOpenFailed,
			Err:    errors.New("create /readonly/notes.txt: permission denied"),
		},
	}

	resp := HandleSave(&messaging.Message{Action: "save", Contents: "hello"}, mock)

	if resp.Success {
		t.Error("Expected success=false when save fails")
	}
	if resp.Error != "open_failed" {
		t.Errorf("Expected error 'open_failed', got '%s'", resp.Error)
	}
	if resp.FullPath != "/readonly/notes.txt" {
		t.Errorf("Expected attempted path in response, got '%s'", resp.FullPath)
	}
	if !strings.Contains(resp.Message, "permission denied") {
		t.Errorf("Expected message to carry the cause, got '%s'", resp.Message)
	}
}

func TestHandleSave_NotConfigured(t *testing.T) {
	mock := &MockFiles{SaveResult: fileaccess.SaveResult{Status: fileaccess.StatusNotConfigured}}

	resp := HandleSave(&messaging.Message{Action: "save", Contents: "hello"}, mock)

	if resp.Success {
		t.Error("Expected success=false with no target file")
	}
	if resp.Error != "not_configured" {
		t.Errorf("Expected error 'not_configured', got '%s'", resp.Error)
	}
}
