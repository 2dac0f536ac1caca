package googleapi

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveScope is the read-only scope used for health export downloads.
const DriveScope = drive.DriveReadonlyScope

// Drive downloads files from Google Drive.
type Drive struct {
	Tokens *TokenManager
}

// NewDrive creates a Drive client.
func NewDrive(tokens *TokenManager) *Drive {
	return &Drive{Tokens: tokens}
}

// LatestFileContent finds the newest file in folderID whose name contains
// namePrefix (names sort descending, matching date-suffixed export names) and
// returns its content.
func (d *Drive) LatestFileContent(ctx context.Context, folderID, namePrefix string) ([]byte, error) {
	client, err := d.Tokens.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and name contains '%s'", folderID, namePrefix)
	resp, err := svc.Files.List().
		Q(query).
		Corpora("user").
		IncludeItemsFromAllDrives(true).
		SupportsAllDrives(true).
		Spaces("drive").
		Fields("files(id, name)").
		OrderBy("name desc").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("no %q files found in drive folder", namePrefix)
	}

	dl, err := svc.Files.Get(resp.Files[0].Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", resp.Files[0].Name, err)
	}
	defer dl.Body.Close()
	return io.ReadAll(dl.Body)
}
