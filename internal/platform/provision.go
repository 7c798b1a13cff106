package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/me/createtaxdb/pkg/model"
)

type provisionRequest struct {
	StorageGiB int `json:"storage_gib"`
}

type provisionResponse struct {
	Name string `json:"name"`
}

// ProvisionStorage asks the dispatcher for a shared volume of gib GiB and
// returns its claim name.
//
// The execution token is checked before any request is made. Failures are
// not retried, and a repeated call may allocate a second volume.
func (c *Client) ProvisionStorage(ctx context.Context, gib int) (string, error) {
	token, err := c.token()
	if err != nil {
		return "", &model.StageError{Stage: model.StageProvision, Err: err}
	}
	if gib <= 0 {
		return "", &model.StageError{
			Stage: model.StageProvision,
			Err:   fmt.Errorf("%w: storage size must be positive, got %d GiB", model.ErrProvisioningFailed, gib),
		}
	}

	url := strings.TrimRight(c.config.DispatcherURL, "/") + "/provision-storage"
	c.logger.Info("provisioning shared storage volume", "storage_gib", gib)

	var resp provisionResponse
	if err := c.postJSON(ctx, url, token, provisionRequest{StorageGiB: gib}, &resp); err != nil {
		return "", &model.StageError{Stage: model.StageProvision, Err: fmt.Errorf("%w: %w", model.ErrProvisioningFailed, err)}
	}
	if resp.Name == "" {
		return "", &model.StageError{
			Stage: model.StageProvision,
			Err:   fmt.Errorf("%w: response missing volume name", model.ErrProvisioningFailed),
		}
	}

	c.logger.Info("provisioned shared storage volume", "volume", resp.Name)
	return resp.Name, nil
}
