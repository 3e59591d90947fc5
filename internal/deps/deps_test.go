package deps

import (
	"errors"
	"reflect"
	"testing"
)

func stub(t *testing.T, path string, lookErr error, out string, runErr error) {
	t.Helper()
	origLook, origOut := lookPath, output
	t.Cleanup(func() { lookPath, output = origLook, origOut })

	lookPath = func(string) (string, error) { return path, lookErr }
	output = func(string, ...string) (string, error) { return out, runErr }
}

func TestCheckTesseract(t *testing.T) {
	stub(t, "/usr/bin/tesseract", nil, "tesseract 5.3.4\n leptonica-1.84.1\n", nil)

	status := CheckTesseract()
	if !status.Installed {
		t.Fatal("expected Installed=true")
	}
	if status.Path != "/usr/bin/tesseract" {
		t.Errorf("path = %q", status.Path)
	}
	if status.Version != "tesseract 5.3.4" {
		t.Errorf("version = %q", status.Version)
	}
}

func TestCheckNotifySend_NotInstalled(t *testing.T) {
	stub(t, "", errors.New("not found"), "", nil)

	status := CheckNotifySend()
	if status.Installed {
		t.Error("expected Installed=false when notify-send not in PATH")
	}
	if status.Path != "" {
		t.Error("expected empty path when not installed")
	}
}

func TestCheck_VersionFailure(t *testing.T) {
	stub(t, "/usr/bin/notify-send", nil, "", errors.New("exit 1"))

	status := CheckNotifySend()
	if !status.Installed || status.Version != "" {
		t.Errorf("status = %+v, want installed with empty version", status)
	}
}

func TestTesseractLanguages(t *testing.T) {
	stub(t, "/usr/bin/tesseract", nil, "List of available languages in \"/usr/share/tessdata/\" (3):\neng\njpn\nosd\n", nil)

	langs, err := TesseractLanguages()
	if err != nil {
		t.Fatalf("TesseractLanguages: %v", err)
	}
	if want := []string{"eng", "jpn", "osd"}; !reflect.DeepEqual(langs, want) {
		t.Errorf("langs = %v, want %v", langs, want)
	}
}

func TestMissingLanguages(t *testing.T) {
	installed := []string{"eng", "jpn"}

	tests := []struct {
		want string
		miss []string
	}{
		{"jpn", nil},
		{"jpn+eng", nil},
		{"kor", []string{"kor"}},
		{"chi_sim+eng+kor", []string{"chi_sim", "kor"}},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := MissingLanguages(tt.want, installed)
			if !reflect.DeepEqual(got, tt.miss) {
				t.Errorf("MissingLanguages(%q) = %v, want %v", tt.want, got, tt.miss)
			}
		})
	}
}
