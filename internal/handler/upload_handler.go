package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// 上传图片的最大宽度，超出按比例缩放
const maxUploadWidth = 1024

// UploadImage 处理头像/封面图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	// 获取上传的文件
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	// 检查文件类型
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	// 创建上传目录
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	// 保存文件，jpeg/png 顺带做宽度压缩
	if err := saveResized(c, file, filePath, ext); err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	fileURL := a.uploadURL + "/" + newFilename
	c.JSON(http.StatusOK, gin.H{
		"url":  fileURL,
		"path": fileURL,
	})
}

func saveResized(c *gin.Context, file *multipart.FileHeader, filePath, ext string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		// 解码不了的格式原样保存
		return c.SaveUploadedFile(file, filePath)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxUploadWidth {
		height := bounds.Dy() * maxUploadWidth / bounds.Dx()
		scaled := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	out, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer out.Close()

	switch ext {
	case ".png":
		return png.Encode(out, img)
	default:
		return jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
	}
}
