package ota

import (
	"fmt"

	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
)

// The four scenes share the shape of their pay/search/detail/cancel tools,
// so those bundles are generated per scene alongside the hand-written ones.
func init() {
	en := map[string]env.ToolDesc{
		"get_ota_hotel_info": {
			Description:    "Get hotel details including rooms by date",
			Preconditions:  "A hotel id is known",
			Postconditions: "Returns the hotel details",
			Args:           map[string]string{"hotel_id": "Hotel id"},
			Returns:        "Hotel details",
		},
		"get_ota_attraction_info": {
			Description:    "Get attraction details including tickets by date",
			Preconditions:  "An attraction id is known",
			Postconditions: "Returns the attraction details",
			Args:           map[string]string{"attraction_id": "Attraction id"},
			Returns:        "Attraction details",
		},
		"get_ota_flight_info": {
			Description:    "Get flight details including seat classes by date",
			Preconditions:  "A flight id is known",
			Postconditions: "Returns the flight details",
			Args:           map[string]string{"flight_id": "Flight id"},
			Returns:        "Flight details",
		},
		"get_ota_train_info": {
			Description:    "Get train details including seat classes by date",
			Preconditions:  "A train id is known",
			Postconditions: "Returns the train details",
			Args:           map[string]string{"train_id": "Train id"},
			Returns:        "Train details",
		},
		"hotel_search_recommend": {
			Description:    "Search hotels in a city by keywords",
			Preconditions:  "A city and keywords describing hotels are known",
			Postconditions: "Returns a hotel list to guide the user's choice",
			Args: map[string]string{
				"city_name": "City name",
				"key_words": "Keywords describing hotels",
			},
			Returns: "Structured hotel list",
		},
		"attractions_search_recommend": {
			Description:    "Search attractions in a city by keywords",
			Preconditions:  "A city and keywords describing attractions are known",
			Postconditions: "Returns an attraction list to guide the user's choice",
			Args: map[string]string{
				"city_name": "City name",
				"key_words": "Keywords describing attractions",
			},
			Returns: "Structured attraction list",
		},
		"flight_search_recommend": {
			Description:    "Search flights between two cities",
			Preconditions:  "Departure and destination cities are known",
			Postconditions: "Returns the matching flights",
			Args: map[string]string{
				"departure":   "Departure city",
				"destination": "Destination city",
			},
			Returns: "Flight list",
		},
		"train_ticket_search": {
			Description:    "Search trains between two cities on a date",
			Preconditions:  "Departure city, destination city and date are known",
			Postconditions: "Returns the matching trains",
			Args: map[string]string{
				"departure":   "Departure city",
				"destination": "Destination city",
				"date":        "Departure date, format yyyy-mm-dd",
			},
			Returns: "Train list",
		},
		"create_hotel_order": {
			Description:    "Book one room of a hotel; inventory is decremented on creation",
			Preconditions:  "A hotel id and room id are confirmed",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"hotel_id": "Hotel id",
				"room_id":  "Room product id",
				"user_id":  "User id",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"create_attraction_order": {
			Description:    "Buy attraction tickets for a date; inventory is decremented on creation",
			Preconditions:  "An attraction id, ticket id, date and quantity are confirmed",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"attraction_id": "Attraction id",
				"ticket_id":     "Ticket product id",
				"user_id":       "User id",
				"date":          "Visit date, format yyyy-mm-dd",
				"quantity":      "Ticket count",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"create_flight_order": {
			Description:    "Buy flight seats for a date; inventory is decremented on creation",
			Preconditions:  "A flight id, seat id, date and quantity are confirmed",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"flight_id": "Flight id",
				"seat_id":   "Seat product id",
				"user_id":   "User id",
				"date":      "Departure date, format yyyy-mm-dd",
				"quantity":  "Seat count",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"create_train_order": {
			Description:    "Buy train seats for a date; inventory is decremented on creation",
			Preconditions:  "A train id, seat id, date and quantity are confirmed",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"train_id": "Train id",
				"seat_id":  "Seat product id",
				"user_id":  "User id",
				"date":     "Departure date, format yyyy-mm-dd",
				"quantity": "Seat count",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"modify_train_order": {
			Description:    "Move a paid train order with a single seat line (any ticket count) to a new date with the same seat type",
			Preconditions:  "A paid train order with exactly one seat line exists; the new date has the seat type",
			Postconditions: "Returns the modification result; a price increase resets the order to unpaid",
			Args: map[string]string{
				"order_id": "Order id",
				"user_id":  "User id",
				"new_date": "New departure date, format yyyy-mm-dd",
			},
			Returns: "Modification result",
		},
		"modify_flight_order": {
			Description:    "Move a paid flight order with a single seat line (any ticket count) to a new date with the same seat type",
			Preconditions:  "A paid flight order with exactly one seat line exists; the new date has the seat type",
			Postconditions: "Returns the modification result; a price increase resets the order to unpaid",
			Args: map[string]string{
				"order_id": "Order id",
				"user_id":  "User id",
				"new_date": "New departure date, format yyyy-mm-dd",
			},
			Returns: "Modification result",
		},
	}

	zh := map[string]env.ToolDesc{
		"get_ota_hotel_info": {
			Description:    "获取酒店详细信息，包括按日期的房型",
			Preconditions:  "已知酒店id",
			Postconditions: "返回酒店详细信息",
			Args:           map[string]string{"hotel_id": "酒店id"},
			Returns:        "酒店详细信息",
		},
		"get_ota_attraction_info": {
			Description:    "获取景点详细信息，包括按日期的门票",
			Preconditions:  "已知景点id",
			Postconditions: "返回景点详细信息",
			Args:           map[string]string{"attraction_id": "景点id"},
			Returns:        "景点详细信息",
		},
		"get_ota_flight_info": {
			Description:    "获取航班详细信息，包括按日期的舱位",
			Preconditions:  "已知航班id",
			Postconditions: "返回航班详细信息",
			Args:           map[string]string{"flight_id": "航班id"},
			Returns:        "航班详细信息",
		},
		"get_ota_train_info": {
			Description:    "获取火车详细信息，包括按日期的坐席",
			Preconditions:  "已知火车id",
			Postconditions: "返回火车详细信息",
			Args:           map[string]string{"train_id": "火车id"},
			Returns:        "火车详细信息",
		},
		"hotel_search_recommend": {
			Description:    "根据城市和关键词搜索酒店",
			Preconditions:  "已知城市和描述酒店的关键词",
			Postconditions: "返回酒店列表，引导用户选择",
			Args: map[string]string{
				"city_name": "城市名称",
				"key_words": "描述酒店的关键词",
			},
			Returns: "结构化输出的酒店信息",
		},
		"attractions_search_recommend": {
			Description:    "根据城市和关键词搜索景点",
			Preconditions:  "已知城市和描述景点的关键词",
			Postconditions: "返回景点列表，引导用户选择",
			Args: map[string]string{
				"city_name": "城市名称",
				"key_words": "描述景点的关键词",
			},
			Returns: "结构化输出的景点信息",
		},
		"flight_search_recommend": {
			Description:    "搜索两个城市之间的航班",
			Preconditions:  "已知出发城市和到达城市",
			Postconditions: "返回匹配的航班",
			Args: map[string]string{
				"departure":   "出发城市",
				"destination": "到达城市",
			},
			Returns: "航班列表",
		},
		"train_ticket_search": {
			Description:    "搜索两个城市之间指定日期的火车",
			Preconditions:  "已知出发城市、到达城市和日期",
			Postconditions: "返回匹配的火车",
			Args: map[string]string{
				"departure":   "出发城市",
				"destination": "到达城市",
				"date":        "出发日期，格式yyyy-mm-dd",
			},
			Returns: "火车列表",
		},
		"create_hotel_order": {
			Description:    "预订酒店房间，创建时扣减库存",
			Preconditions:  "确定酒店id和房型id",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"hotel_id": "酒店id",
				"room_id":  "房型商品id",
				"user_id":  "用户id",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"create_attraction_order": {
			Description:    "购买指定日期的景点门票，创建时扣减库存",
			Preconditions:  "确定景点id、门票id、日期和数量",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"attraction_id": "景点id",
				"ticket_id":     "门票商品id",
				"user_id":       "用户id",
				"date":          "游玩日期，格式yyyy-mm-dd",
				"quantity":      "门票数量",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"create_flight_order": {
			Description:    "购买指定日期的航班座位，创建时扣减库存",
			Preconditions:  "确定航班id、舱位id、日期和数量",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"flight_id": "航班id",
				"seat_id":   "舱位商品id",
				"user_id":   "用户id",
				"date":      "出发日期，格式yyyy-mm-dd",
				"quantity":  "座位数量",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"create_train_order": {
			Description:    "购买指定日期的火车坐席，创建时扣减库存",
			Preconditions:  "确定火车id、坐席id、日期和数量",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"train_id": "火车id",
				"seat_id":  "坐席商品id",
				"user_id":  "用户id",
				"date":     "出发日期，格式yyyy-mm-dd",
				"quantity": "坐席数量",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"modify_train_order": {
			Description:    "将已支付且仅含一个坐席项（票数不限）的火车票订单改签到新日期（坐席类型不变）",
			Preconditions:  "存在已支付且仅含一个坐席项的火车订单，新日期有同类型坐席",
			Postconditions: "返回改签结果，差价为正时订单重置为未支付",
			Args: map[string]string{
				"order_id": "订单id",
				"user_id":  "用户id",
				"new_date": "新的出发日期，格式yyyy-mm-dd",
			},
			Returns: "改签结果信息",
		},
		"modify_flight_order": {
			Description:    "将已支付且仅含一个舱位项（票数不限）的机票订单改签到新日期（舱位类型不变）",
			Preconditions:  "存在已支付且仅含一个舱位项的航班订单，新日期有同类型舱位",
			Postconditions: "返回改签结果，差价为正时订单重置为未支付",
			Args: map[string]string{
				"order_id": "订单id",
				"user_id":  "用户id",
				"new_date": "新的出发日期，格式yyyy-mm-dd",
			},
			Returns: "改签结果信息",
		},
	}

	type sceneText struct {
		en, zh string
	}
	scenes := map[string]sceneText{
		"hotel":      {"hotel", "酒店"},
		"attraction": {"attraction", "景点"},
		"flight":     {"flight", "航班"},
		"train":      {"train", "火车"},
	}
	for scene, text := range scenes {
		en[fmt.Sprintf("pay_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("Pay a %s order after the user confirms payment", text.en),
			Preconditions:  fmt.Sprintf("An unpaid %s order exists and the user confirmed payment", text.en),
			Postconditions: "Returns the payment result",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Payment result",
		}
		en[fmt.Sprintf("search_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("List the user's %s orders filtered by date and status", text.en),
			Preconditions:  "The user id is known",
			Postconditions: fmt.Sprintf("Returns the matching %s orders", text.en),
			Args: map[string]string{
				"user_id": "User id",
				"date":    "Product date filter, format yyyy-mm-dd, optional",
				"status":  "Order status filter, defaults to paid",
			},
			Returns: "Order list",
		}
		en[fmt.Sprintf("get_%s_order_detail", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("Get the full detail of one %s order", text.en),
			Preconditions:  fmt.Sprintf("A %s order id is known", text.en),
			Postconditions: "Returns the order detail",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Order detail",
		}
		en[fmt.Sprintf("cancel_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("Cancel a %s order; paid orders are refunded", text.en),
			Preconditions:  fmt.Sprintf("A %s order id is known and the user asked to cancel", text.en),
			Postconditions: "Returns the cancellation result with the refund amount",
			Args: map[string]string{
				"order_id": "Order id",
				"user_id":  "User id",
			},
			Returns: "Cancellation result",
		}

		zh[fmt.Sprintf("pay_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("用户确认支付%s订单", text.zh),
			Preconditions:  fmt.Sprintf("存在未支付的%s订单，用户表达确认支付", text.zh),
			Postconditions: "返回支付结果信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "支付结果信息",
		}
		zh[fmt.Sprintf("search_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("按日期和状态查询用户的%s订单", text.zh),
			Preconditions:  "已知用户id",
			Postconditions: fmt.Sprintf("返回符合条件的%s订单", text.zh),
			Args: map[string]string{
				"user_id": "用户id",
				"date":    "商品日期过滤条件，格式yyyy-mm-dd，可选",
				"status":  "订单状态过滤条件，默认paid",
			},
			Returns: "订单列表",
		}
		zh[fmt.Sprintf("get_%s_order_detail", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("查询单个%s订单的详细信息", text.zh),
			Preconditions:  fmt.Sprintf("已知%s订单id", text.zh),
			Postconditions: "返回订单详细信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "订单详细信息",
		}
		zh[fmt.Sprintf("cancel_%s_order", scene)] = env.ToolDesc{
			Description:    fmt.Sprintf("取消%s订单，已支付订单退款", text.zh),
			Preconditions:  fmt.Sprintf("已知%s订单id，用户表达取消", text.zh),
			Postconditions: "返回取消结果及退款金额",
			Args: map[string]string{
				"order_id": "订单id",
				"user_id":  "用户id",
			},
			Returns: "取消结果信息",
		}
	}

	env.RegisterDescriptions("ota", lang.English, en)
	env.RegisterDescriptions("ota", lang.Chinese, zh)
}
