package client

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"dcache-admin/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// certWatcher serves the client certificate for TLS handshakes and reloads
// it whenever the files change. Grid proxies are short lived and renewed in
// place, so a long running sync must pick up the new proxy.
type certWatcher struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	fw       *fsnotify.Watcher
	doneCh   chan struct{}
}

func newCertWatcher(certFile, keyFile string) (*certWatcher, error) {
	w := &certWatcher{
		certFile: certFile,
		keyFile:  keyFile,
		doneCh:   make(chan struct{}),
	}

	if err := w.reload(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate watcher: %w", err)
	}
	w.fw = fw

	// Watch the directories: proxies are usually replaced by rename.
	dirs := map[string]bool{
		filepath.Dir(certFile): true,
		filepath.Dir(keyFile):  true,
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go w.run()

	logger.Log.Debug("client certificate loaded",
		zap.String("cert", certFile),
		zap.String("key", keyFile))

	return w, nil
}

func (w *certWatcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load client certificate: %w", err)
	}

	w.cert.Store(&cert)
	return nil
}

func (w *certWatcher) run() {
	for {
		select {
		case <-w.doneCh:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}

			name := filepath.Clean(ev.Name)
			if name != w.certFile && name != w.keyFile {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}

			if err := w.reload(); err != nil {
				// Half written file, the next event retries.
				logger.Log.Debug("client certificate reload failed",
					zap.String("file", name),
					zap.Error(err))
				continue
			}

			logger.Log.Info("client certificate reloaded",
				zap.String("file", name))

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Warn("certificate watcher error",
				zap.Error(err))
		}
	}
}

func (w *certWatcher) GetClientCertificate(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
	return w.cert.Load(), nil
}

func (w *certWatcher) Close() {
	close(w.doneCh)
	_ = w.fw.Close()
}
