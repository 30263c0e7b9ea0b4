package remoteimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/GoArmGo/ArtMarket/internal/imaging"
)

var errBlockedAddress = errors.New("адрес не является публичным")

// sharedAddressSpace — 100.64.0.0/10 (CGNAT), не покрытый netip.Addr.IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Client скачивает внешние изображения, на которые ссылаются работы,
// чтобы зеркалить их в наше хранилище. Соединения устанавливаются
// только с публичными адресами, проверка идёт после DNS-резолва.
type Client struct {
	httpClient *http.Client
	allowAddr  func(netip.Addr) bool
	logger     *slog.Logger
}

// NewClient создает новый экземпляр Client.
func NewClient(logger *slog.Logger) *Client {
	c := &Client{
		allowAddr: publicAddr,
		logger:    logger,
	}
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: c.checkAddr,
	}
	c.httpClient = &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return c
}

// checkAddr вызывается для каждого соединения, включая редиректы.
func (c *Client) checkAddr(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, address)
	}
	if !c.allowAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ap.Addr())
	}
	return nil
}

// publicAddr отсекает loopback, частные, link-local, multicast и служебные адреса.
func publicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!sharedAddressSpace.Contains(ip)
}

// Fetch скачивает изображение не больше maxBytes и проверяет сигнатуру.
// Возвращает байты и определённый MIME-тип.
func (c *Client) Fetch(ctx context.Context, rawURL string, maxBytes int64) ([]byte, string, error) {
	start := time.Now()

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: некорректный URL изображения", domain.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if errors.Is(err, errBlockedAddress) {
		c.logger.Warn("remote image address blocked", "url", u.Redacted(), "error", err)
		return nil, "", fmt.Errorf("%w: адрес изображения недоступен", domain.ErrInvalidInput)
	}
	if err != nil {
		c.logger.Warn("remote image request failed", "url", u.Redacted(), "error", err)
		return nil, "", fmt.Errorf("%w: ошибка загрузки изображения: %v", domain.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("%w: источник вернул статус %d", domain.ErrInvalidImage, resp.StatusCode)
	}
	if resp.ContentLength > maxBytes {
		return nil, "", fmt.Errorf("%w: размер превышает %d байт", domain.ErrInvalidImage, maxBytes)
	}

	data, err := imaging.ReadLimited(resp.Body, maxBytes)
	if err != nil {
		return nil, "", err
	}

	mime, ok := imaging.DetectMIME(data)
	if !ok {
		return nil, "", fmt.Errorf("%w: неподдерживаемый формат", domain.ErrInvalidImage)
	}

	c.logger.Info("remote image fetched",
		"url", u.Redacted(),
		"bytes", len(data),
		"mime", mime,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, mime, nil
}
