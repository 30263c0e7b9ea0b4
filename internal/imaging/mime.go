package imaging

import "net/http"

// decodable — форматы, для которых подключены декодеры.
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// DetectMIME определяет тип по сигнатуре. WebP распознаётся, но не
// поддерживается: для него нет декодера.
func DetectMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", false
	}
	mime := http.DetectContentType(data)
	if decodable[mime] {
		return mime, true
	}
	return "", false
}
