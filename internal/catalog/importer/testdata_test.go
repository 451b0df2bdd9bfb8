package importer

const shopDocument = `
shop: Svyaznoy

categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories

goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Smartphone Apple iPhone XS Max 512GB (gold)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Diagonal (inch)": 6.5
      "Resolution (px)": 2688x1242
      "Storage (GB)": 512
      "Color": gold
  - id: 4216313
    category: 224
    model: apple/iphone/xr
    name: Smartphone Apple iPhone XR 256GB (red)
    price: "65000.50"
    price_rrc: 69990
    quantity: 9
    parameters:
      "Diagonal (inch)": 6.1
      "Color": red
  - id: 4672670
    category: 15
    model: apple/airpods
    name: Apple AirPods 2
    price: 11000
    price_rrc: 12990
    quantity: 0
`
