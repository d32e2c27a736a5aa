package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
)

// DeviceInfo fetches the raw inventory record for one device and
// returns it pretty-printed. The payload is passed through without
// interpretation; if it is not valid JSON it is returned as-is.
func (s *Service) DeviceInfo(ctx context.Context, id string) ([]byte, error) {
	raw, err := s.client.GetRaw(ctx, inventoryDevicesPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw, nil
	}
	return buf.Bytes(), nil
}
