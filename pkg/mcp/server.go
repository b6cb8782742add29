package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deeporg/deeporg/pkg/organizer"
)

type (
	// ListFilesInput has no parameters; the target directory is fixed at
	// server start.
	ListFilesInput struct{}

	// ListFilesOutput contains the direct children of the target directory.
	ListFilesOutput struct {
		Folders []string `json:"folders"`
		Files   []string `json:"files"`
	}

	// CreateFolderInput contains parameters for creating a folder.
	CreateFolderInput struct {
		FolderName string `json:"folder_name" jsonschema:"Name of the folder to create, without any path separators"`
	}

	// CreateFolderOutput contains the result of creating a folder.
	CreateFolderOutput struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	// MoveFileInput contains parameters for moving a file into a folder.
	MoveFileInput struct {
		FileName   string `json:"file_name" jsonschema:"Name of the file to move, without any path separators"`
		DestFolder string `json:"dest_folder" jsonschema:"Name of the destination folder, which must already exist"`
	}

	// MoveFileOutput contains the result of moving a file.
	MoveFileOutput struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	// ReadFileInput contains parameters for reading a text file.
	ReadFileInput struct {
		FileName string `json:"file_name" jsonschema:"Name of the file to read, without any path separators"`
	}

	// ReadFileOutput contains the head of a text file.
	ReadFileOutput struct {
		Content string `json:"content"`
	}
)

// Server wraps the file operations behind an MCP server so any MCP client
// can drive the same confined tool set the built-in agent uses.
type Server struct {
	ops *organizer.FileOps
	srv *sdk.Server
}

// NewServer builds an MCP server exposing list_files, create_folder,
// move_file and read_file over ops.
func NewServer(ops *organizer.FileOps, version string) *Server {
	s := &Server{ops: ops}

	s.srv = sdk.NewServer(&sdk.Implementation{
		Name:    "deeporg",
		Version: version,
	}, nil)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "list_files",
		Description: "List all files and folders in the target directory.",
	}, s.handleListFiles)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "create_folder",
		Description: "Create a new folder in the target directory. Succeeds if the folder already exists.",
	}, s.handleCreateFolder)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "move_file",
		Description: "Move a file from the target directory into an existing folder.",
	}, s.handleMoveFile)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "read_file",
		Description: "Read the beginning of a text file in the target directory.",
	}, s.handleReadFile)

	return s
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) handleListFiles(ctx context.Context, req *sdk.CallToolRequest, input ListFilesInput) (*sdk.CallToolResult, ListFilesOutput, error) {
	entries, err := s.ops.List()
	if err != nil {
		return &sdk.CallToolResult{IsError: true}, ListFilesOutput{}, err
	}

	out := ListFilesOutput{Folders: []string{}, Files: []string{}}
	for _, entry := range entries {
		if entry.Dir {
			out.Folders = append(out.Folders, entry.Name)
		} else {
			out.Files = append(out.Files, entry.Name)
		}
	}
	return nil, out, nil
}

func (s *Server) handleCreateFolder(ctx context.Context, req *sdk.CallToolRequest, input CreateFolderInput) (*sdk.CallToolResult, CreateFolderOutput, error) {
	msg, err := s.ops.CreateFolder(input.FolderName)
	if err != nil {
		return &sdk.CallToolResult{IsError: true}, CreateFolderOutput{Success: false}, err
	}
	return nil, CreateFolderOutput{Success: true, Message: msg}, nil
}

func (s *Server) handleMoveFile(ctx context.Context, req *sdk.CallToolRequest, input MoveFileInput) (*sdk.CallToolResult, MoveFileOutput, error) {
	msg, err := s.ops.MoveFile(input.FileName, input.DestFolder)
	if err != nil {
		return &sdk.CallToolResult{IsError: true}, MoveFileOutput{Success: false}, err
	}
	return nil, MoveFileOutput{Success: true, Message: msg}, nil
}

func (s *Server) handleReadFile(ctx context.Context, req *sdk.CallToolRequest, input ReadFileInput) (*sdk.CallToolResult, ReadFileOutput, error) {
	content, err := s.ops.ReadFile(input.FileName, 0)
	if err != nil {
		return &sdk.CallToolResult{IsError: true}, ReadFileOutput{}, err
	}
	return nil, ReadFileOutput{Content: content}, nil
}
