package env

import "github.com/vitabench/vita/internal/lang"

// Description bundles for the base-toolkit tools, both languages. Domain
// catalogs live next to their toolkits.
func init() {
	RegisterDescriptions(GenericDomain, lang.English, map[string]ToolDesc{
		"longitude_latitude_to_distance": {
			Description:    "Calculate the straight-line distance in meters between two coordinates",
			Preconditions:  "Longitude and latitude of both points are known",
			Postconditions: "Returns the distance in meters",
			Args: map[string]string{
				"longitude1": "Longitude of the first point",
				"latitude1":  "Latitude of the first point",
				"longitude2": "Longitude of the second point",
				"latitude2":  "Latitude of the second point",
			},
			Returns: "Distance in meters",
		},
		"weather": {
			Description:    "Query the weather of a city for a date range",
			Preconditions:  "A city or address and a date range are known",
			Postconditions: "Returns one weather record per day in the range",
			Args: map[string]string{
				"address":    "City name or address",
				"date_start": "Start date, format yyyy-mm-dd",
				"date_end":   "End date, format yyyy-mm-dd",
			},
			Returns: "Weather records, one per line",
		},
		"address_to_longitude_latitude": {
			Description:    "Resolve an address to its longitude and latitude",
			Preconditions:  "An address string is known",
			Postconditions: "Returns the coordinates of the closest known address",
			Args: map[string]string{
				"address": "The address to resolve",
			},
			Returns: "[longitude, latitude]",
		},
		"get_date_holiday_info": {
			Description:    "Look up which holiday falls on a date",
			Preconditions:  "A date is known",
			Postconditions: "Returns the holiday name or a not-a-holiday notice",
			Args: map[string]string{
				"date": "Date, format yyyy-mm-dd",
			},
			Returns: "Holiday name",
		},
		"get_holiday_date": {
			Description:    "Look up the date of a holiday in a year",
			Preconditions:  "A year and holiday name are known",
			Postconditions: "Returns the date of the holiday",
			Args: map[string]string{
				"year":         "Four-digit year",
				"holiday_name": "Holiday name",
			},
			Returns: "Date, format yyyy-mm-dd",
		},
		"get_user_historical_behaviors": {
			Description:    "Read the current user's historical behavior record",
			Preconditions:  "None",
			Postconditions: "Returns the stored behavior record",
			Args:           map[string]string{},
			Returns:        "Historical behavior record",
		},
		"get_user_all_orders": {
			Description:    "List every order of the current user across all scenarios",
			Preconditions:  "None",
			Postconditions: "Returns every order in the environment",
			Args:           map[string]string{},
			Returns:        "Order list, one per line",
		},
		"get_nearby": {
			Description:    "Search stores, hotels, attractions, flights and trains within a radius of a coordinate",
			Preconditions:  "Longitude, latitude and a search radius in meters are known",
			Postconditions: "Returns the entries inside the radius",
			Args: map[string]string{
				"longitude": "Center longitude",
				"latitude":  "Center latitude",
				"range":     "Radius in meters",
			},
			Returns: "Matching entries, one per line",
		},
	})

	RegisterDescriptions(GenericDomain, lang.Chinese, map[string]ToolDesc{
		"longitude_latitude_to_distance": {
			Description:    "计算两个经纬度坐标之间的直线距离（米）",
			Preconditions:  "已知两点的经纬度",
			Postconditions: "返回两点之间的距离（米）",
			Args: map[string]string{
				"longitude1": "第一个点的经度",
				"latitude1":  "第一个点的纬度",
				"longitude2": "第二个点的经度",
				"latitude2":  "第二个点的纬度",
			},
			Returns: "距离（米）",
		},
		"weather": {
			Description:    "查询城市在日期区间内的天气",
			Preconditions:  "已知城市或地址以及日期区间",
			Postconditions: "返回区间内每天的天气记录",
			Args: map[string]string{
				"address":    "城市名称或地址",
				"date_start": "开始日期，格式yyyy-mm-dd",
				"date_end":   "结束日期，格式yyyy-mm-dd",
			},
			Returns: "天气记录，每行一条",
		},
		"address_to_longitude_latitude": {
			Description:    "将地址解析为经纬度",
			Preconditions:  "已知地址",
			Postconditions: "返回最接近地址的经纬度",
			Args: map[string]string{
				"address": "需要解析的地址",
			},
			Returns: "[经度, 纬度]",
		},
		"get_date_holiday_info": {
			Description:    "查询日期对应的节日",
			Preconditions:  "已知日期",
			Postconditions: "返回节日名称或非节日提示",
			Args: map[string]string{
				"date": "日期，格式yyyy-mm-dd",
			},
			Returns: "节日名称",
		},
		"get_holiday_date": {
			Description:    "查询某年节日对应的日期",
			Preconditions:  "已知年份和节日名称",
			Postconditions: "返回节日日期",
			Args: map[string]string{
				"year":         "四位年份",
				"holiday_name": "节日名称",
			},
			Returns: "日期，格式yyyy-mm-dd",
		},
		"get_user_historical_behaviors": {
			Description:    "读取当前用户的历史行为记录",
			Preconditions:  "无",
			Postconditions: "返回历史行为记录",
			Args:           map[string]string{},
			Returns:        "历史行为记录",
		},
		"get_user_all_orders": {
			Description:    "查询当前用户在所有场景下的全部订单",
			Preconditions:  "无",
			Postconditions: "返回环境中的全部订单",
			Args:           map[string]string{},
			Returns:        "订单列表，每行一条",
		},
		"get_nearby": {
			Description:    "搜索坐标附近指定半径内的商家、酒店、景点、航班和火车",
			Preconditions:  "已知经纬度和搜索半径（米）",
			Postconditions: "返回半径内的条目",
			Args: map[string]string{
				"longitude": "中心经度",
				"latitude":  "中心纬度",
				"range":     "半径（米）",
			},
			Returns: "匹配条目，每行一条",
		},
	})
}
