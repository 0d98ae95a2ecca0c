package apidocs

import (
	"fmt"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

// Doc 挂载一个 API 文档站点：basePath 重定向到文档页，
// 文档页从 apispec.json 读取接口描述。只在非生产环境下启用。
func Doc(basePath string, apiJSON []byte) echo.MiddlewareFunc {
	docPath := path.Join(basePath, "apidocs")
	specPath := path.Join(basePath, "apispec.json")

	uiHTML := fmt.Sprintf(pageTemplate, specPath)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().URL.Path {
			case docPath:
				return c.HTML(http.StatusOK, uiHTML)
			case specPath:
				return c.JSONBlob(http.StatusOK, apiJSON)
			case basePath:
				return c.Redirect(http.StatusFound, docPath)
			}

			if next == nil {
				return c.String(http.StatusNotFound, fmt.Sprintf("%q not found", c.Request().URL.Path))
			}

			return next(c)
		}
	}
}

const pageTemplate = `
<!DOCTYPE html>
<html lang="en">
  <head>
    <title>API documentation</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>

  <body>
    <script id="api-reference" data-url="%s"></script>

    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`
