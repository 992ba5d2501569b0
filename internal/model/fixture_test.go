package model

const sampleDocument = `{
  "windows": [
    {
      "id": "main",
      "style": ["dark"],
      "height": 800,
      "width": 480,
      "backgroundResource": "bg",
      "controls": [
        {
          "id": "lamp",
          "height": 64, "width": 64, "x": 10, "y": 20,
          "display": {
            "componentId": "lamp",
            "componentState": "on",
            "defaultResource": "off-img",
            "map": [{"value": true, "resource": "on-img"}]
          },
          "primaryAction": {"component": {"id": "lamp", "action": "toggle"}},
          "secondaryAction": {"window": {"id": "settings", "popup": true}}
        },
        {
          "id": "temperature",
          "height": 32, "width": 120, "x": 100, "y": 20,
          "text": {
            "format": "return t + ' C';",
            "context": [{"id": "t", "componentId": "sensor", "componentState": "value"}]
          }
        }
      ]
    },
    {
      "id": "settings",
      "height": 300,
      "width": 300,
      "controls": []
    },
    {
      "id": "desk",
      "height": 1080,
      "width": 1920,
      "controls": null
    }
  ],
  "defaultWindow": {"mobile": "main", "desktop": "desk"},
  "styleHash": "css-hash"
}`

func sampleVersion() *Version {
	v, err := Parse(ContentHash([]byte(sampleDocument)), []byte(sampleDocument), ParseOptions{VerifyHash: true})
	if err != nil {
		panic(err)
	}
	return v
}
