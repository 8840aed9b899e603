package volcclient

import "encoding/json"

// 本文件是火山引擎方舟（Ark）与智能视觉（Visual）接口的线上契约。

// chatContentPart 是多模态消息里的一个内容块。
// Type 取 "text" / "image_url" / "video_url"。
type chatContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *mediaURL `json:"image_url,omitempty"`
	VideoURL *mediaURL `json:"video_url,omitempty"`
}

type mediaURL struct {
	URL string `json:"url"`
}

// chatMessage 是 chat completions 的一条消息。
// Content 为多模态内容块数组。
type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

// chatCompletionRequest 是 /chat/completions 的请求体。
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatCompletionResponse 只保留本服务用到的字段。
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// imageGenerationRequest 是 /images/generations 的请求体。
type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Image          string `json:"image,omitempty"` // 图生图/编辑时的输入图（URL 或 data URL）
	Size           string `json:"size,omitempty"`
	N              int    `json:"n,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	Watermark      *bool  `json:"watermark,omitempty"`
}

// imageGenerationResponse 是图像生成的响应体。
type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// videoTaskCreateRequest 是 /contents/generations/tasks 的创建请求体。
// 文生视频只带 text 内容块；图生视频追加 role 为 reference_image 的图片块。
type videoTaskCreateRequest struct {
	Model    string             `json:"model"`
	Content  []videoContentPart `json:"content"`
	Ratio    string             `json:"ratio,omitempty"`
	Duration int                `json:"duration,omitempty"`
}

type videoContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *mediaURL `json:"image_url,omitempty"`
	Role     string    `json:"role,omitempty"`
}

// videoTaskCreateResponse 是创建视频任务的响应体。
type videoTaskCreateResponse struct {
	ID string `json:"id"`
}

// videoTaskDetail 是查询视频任务的响应体。
// 视频地址在不同版本的响应里出现在 content 或 output 下，两处都看。
type videoTaskDetail struct {
	ID      string `json:"id"`
	Status  string `json:"status"` // queued / running / succeeded / failed
	Content *struct {
		VideoURL string `json:"video_url"`
	} `json:"content,omitempty"`
	Output *struct {
		VideoURL string `json:"video_url"`
	} `json:"output,omitempty"`
	Error *arkError `json:"error,omitempty"`
}

// arkError 是方舟的错误对象。
type arkError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// arkErrorEnvelope 是方舟非 2xx 响应的信封。
type arkErrorEnvelope struct {
	Error *arkError `json:"error,omitempty"`
}

// visualRequest 是智能视觉 CVProcess 的请求体。
// req_key 标识具体能力，其余字段随能力而变。
type visualRequest struct {
	ReqKey           string   `json:"req_key"`
	BinaryDataBase64 []string `json:"binary_data_base64,omitempty"`
	Prompt           string   `json:"prompt,omitempty"`
	ReturnURL        bool     `json:"return_url,omitempty"`
}

// visualResponse 是智能视觉的响应体。
type visualResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		BinaryDataBase64 []string        `json:"binary_data_base64,omitempty"`
		ImageURLs        []string        `json:"image_urls,omitempty"`
		Extra            json.RawMessage `json:"algorithm_base_resp,omitempty"`
	} `json:"data,omitempty"`
}
